package nakama

const (
	// RpcQuickPlay is the RPC id clients call to find or create a match.
	RpcQuickPlay = "quick_play"

	// MatchName is the authoritative match handler name registered with Nakama.
	MatchName = "gooseduck_match"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStartGame         int64 = 1
	OpSubmitAction      int64 = 2
	OpDiscussionMessage int64 = 3
	OpDiscussionNext    int64 = 4
	OpChatMessage       int64 = 5
	OpChatEnd           int64 = 6
	OpResetGame         int64 = 7
	OpGetMap            int64 = 8
	OpAdminOverview     int64 = 9

	// Server -> Client events
	OpSnapshot        int64 = 101
	OpDiscussionState int64 = 102
	OpChatState       int64 = 103
	OpMapInfo         int64 = 104
	OpAdminState      int64 = 105
	OpGameError       int64 = 110
)
