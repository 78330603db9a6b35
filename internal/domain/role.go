package domain

// Team is the hidden affiliation of a role.
type Team string

const (
	TeamGood    Team = "good"
	TeamNeutral Team = "neutral"
	TeamEvil    Team = "evil"
)

// RoleType identifies a role in the catalog.
type RoleType string

const (
	// Good team
	RoleGoose     RoleType = "goose"
	RoleSheriff   RoleType = "sheriff"   // can kill, dies with a goose victim
	RoleVigilante RoleType = "vigilante" // single kill use
	RoleCanadian  RoleType = "canadian"  // killer is forced to report

	// Neutral team
	RoleDodo RoleType = "dodo" // wins by being ejected

	// Evil team
	RoleAssassin RoleType = "assassin"
)

// WinVotedOut marks a role that wins the moment it is ejected by vote.
const WinVotedOut = "voted_out"

// Role is one entry of the static role catalog. Identities hold a value
// copy of their role, never a pointer back into the catalog.
type Role struct {
	Type         RoleType
	Team         Team
	Name         string
	Description  string
	Abilities    []string
	CanKill      bool
	KillUses     int // 0 means unlimited
	WinCondition string
}

// roleCatalog is the static read-only role table.
var roleCatalog = map[RoleType]Role{
	RoleGoose: {
		Type:        RoleGoose,
		Team:        TeamGood,
		Name:        "Goose",
		Description: "Regular good player, wins by completing tasks or finding evil players.",
	},
	RoleSheriff: {
		Type:        RoleSheriff,
		Team:        TeamGood,
		Name:        "Sheriff [Goose]",
		Description: "Can kill any role, but killing a goose causes mutual destruction.",
		Abilities:   []string{"sheriff_kill"},
		CanKill:     true,
	},
	RoleVigilante: {
		Type:        RoleVigilante,
		Team:        TeamGood,
		Name:        "Vigilante [Goose]",
		Description: "Only one kill opportunity, can hunt any target.",
		Abilities:   []string{"single_kill"},
		CanKill:     true,
		KillUses:    1,
	},
	RoleCanadian: {
		Type:        RoleCanadian,
		Team:        TeamGood,
		Name:        "Canadian Goose",
		Description: "Forces the killer to immediately report when killed.",
		Abilities:   []string{"death_report"},
	},
	RoleDodo: {
		Type:         RoleDodo,
		Team:         TeamNeutral,
		Name:         "Dodo",
		Description:  "Wins directly by being voted out in the voting phase.",
		WinCondition: WinVotedOut,
	},
	RoleAssassin: {
		Type:        RoleAssassin,
		Team:        TeamEvil,
		Name:        "Assassin [Duck]",
		Description: "Disguised as a goose, kills secretly.",
		Abilities:   []string{"kill"},
		CanKill:     true,
	},
}

// RoleByType looks up a catalog entry.
func RoleByType(t RoleType) (Role, bool) {
	role, ok := roleCatalog[t]
	return role, ok
}

// Identity is the hidden per-participant role state. Created once at game
// start and mutated only by the resolution rules.
type Identity struct {
	Role         Role
	Alive        bool
	Protected    bool   // one-shot shield
	MorphedAs    string // disguise target participant ID, empty if none
	KillUsesLeft int    // remaining uses when Role.KillUses > 0
}

// NewIdentity creates a live identity for the given role.
func NewIdentity(role Role) *Identity {
	return &Identity{
		Role:         role,
		Alive:        true,
		KillUsesLeft: role.KillUses,
	}
}

// CanUseKill reports whether the kill ability is currently usable.
func (id *Identity) CanUseKill() bool {
	return id.Alive && id.Role.CanKill && (id.Role.KillUses == 0 || id.KillUsesLeft > 0)
}

// UseKill consumes one kill use for finite-use roles.
func (id *Identity) UseKill() {
	if id.Role.KillUses > 0 && id.KillUsesLeft > 0 {
		id.KillUsesLeft--
	}
}
