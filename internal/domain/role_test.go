package domain

import "testing"

func TestRoleByType(t *testing.T) {
	tests := []struct {
		name    string
		role    RoleType
		wantOK  bool
		team    Team
		canKill bool
	}{
		{name: "Goose", role: RoleGoose, wantOK: true, team: TeamGood, canKill: false},
		{name: "Sheriff", role: RoleSheriff, wantOK: true, team: TeamGood, canKill: true},
		{name: "Assassin", role: RoleAssassin, wantOK: true, team: TeamEvil, canKill: true},
		{name: "Dodo", role: RoleDodo, wantOK: true, team: TeamNeutral, canKill: false},
		{name: "Unknown", role: RoleType("swan"), wantOK: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			role, ok := RoleByType(test.role)
			if ok != test.wantOK {
				t.Fatalf("RoleByType(%q) ok = %t, want %t", test.role, ok, test.wantOK)
			}
			if !ok {
				return
			}
			if role.Team != test.team {
				t.Errorf("Team = %s, want %s", role.Team, test.team)
			}
			if role.CanKill != test.canKill {
				t.Errorf("CanKill = %t, want %t", role.CanKill, test.canKill)
			}
		})
	}
}

func TestIdentityKillUses(t *testing.T) {
	vigilante, _ := RoleByType(RoleVigilante)
	id := NewIdentity(vigilante)

	if !id.CanUseKill() {
		t.Fatalf("Expected fresh vigilante to have a kill available")
	}
	id.UseKill()
	if id.CanUseKill() {
		t.Fatalf("Expected vigilante kill to be spent after one use")
	}

	assassin, _ := RoleByType(RoleAssassin)
	killer := NewIdentity(assassin)
	for i := 0; i < 5; i++ {
		killer.UseKill()
	}
	if !killer.CanUseKill() {
		t.Fatalf("Expected assassin kills to be unlimited")
	}

	killer.Alive = false
	if killer.CanUseKill() {
		t.Fatalf("Expected dead killer to lose the kill ability")
	}
}

func TestDodoWinsByEjection(t *testing.T) {
	dodo, _ := RoleByType(RoleDodo)
	if dodo.WinCondition != WinVotedOut {
		t.Fatalf("Dodo win condition = %q, want %q", dodo.WinCondition, WinVotedOut)
	}
}
