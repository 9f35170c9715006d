package types

const (
	ContextUserKey = "user"

	// TokenCookie carries the access token for the web interface.
	TokenCookie = "token"
	FlashCookie = "flash"
)

// AllowedOrigins is consulted by CORS and the websocket upgrader.
var AllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func SetAllowedOrigins(origins []string) {
	if len(origins) > 0 {
		AllowedOrigins = origins
	}
}

func OriginAllowed(origin string) bool {
	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
