package constants

// Centralized constants for headers, env keys and routes.
const (
	// Environment variable keys
	EnvConfigPath = "BATTLE_CONFIG"

	// HTTP headers and content types
	HeaderContentType   = "Content-Type"
	HeaderParticipantID = "X-Participant-ID"

	ContentTypeJSON = "application/json"
)

// Routes used by the backend router
const (
	RouteAPIPrefix        = "/api"
	RouteMatchmakingJoin  = "/matchmaking/join"
	RouteMatchmakingLeave = "/matchmaking/leave"
	RouteBattles          = "/battles"
	RouteBattleByID       = "/battles/:battleID"
	RouteBattleLog        = "/battles/:battleID/log"
	RouteBattleForfeit    = "/battles/:battleID/forfeit"
	RouteBattleWS         = "/battles/:battleID/ws"
	RouteHealthz          = "/healthz"
	RouteVersion          = "/version"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest        = "Invalid request"
	ErrBattleNotFound        = "Battle not found"
	ErrParticipantIDRequired = "X-Participant-ID header is required"
	ErrNotYourBattle         = "Participant not part of this battle"
	ErrFailedFetchBattles    = "Failed to fetch battles"
	ErrFailedFetchLog        = "Failed to fetch battle log"
)

// Logging field names
const (
	LogFieldBattleID      = "battle_id"
	LogFieldParticipantID = "participant_id"
	LogFieldTurn          = "turn"
	LogFieldAddr          = "addr"
	LogFieldQueueSize     = "queue_size"
)
