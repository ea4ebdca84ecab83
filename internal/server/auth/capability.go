package auth

// Capability is a typed permission flag. Handlers never inspect raw flag
// bags; every authorization question goes through Authorize.
type Capability string

const (
	CapView         Capability = "view"
	CapDownload     Capability = "download"
	CapUpload       Capability = "upload"
	CapCreateFolder Capability = "create_folder"
	CapEditFolder   Capability = "edit_folder"
	CapDelete       Capability = "delete"
	CapDeleteFolder Capability = "delete_folder"
	CapMove         Capability = "move"
)

var known = map[Capability]struct{}{
	CapView:         {},
	CapDownload:     {},
	CapUpload:       {},
	CapCreateFolder: {},
	CapEditFolder:   {},
	CapDelete:       {},
	CapDeleteFolder: {},
	CapMove:         {},
}

// ParseCapabilities converts raw flag names to typed capabilities, dropping
// anything unknown.
func ParseCapabilities(names []string) []Capability {
	caps := make([]Capability, 0, len(names))
	for _, n := range names {
		c := Capability(n)
		if _, ok := known[c]; ok {
			caps = append(caps, c)
		}
	}
	return caps
}

// Identity is the request-scoped caller: who they are and what they may do.
// It is injected into the request context by the auth middleware and passed
// explicitly into services.
type Identity struct {
	UserID       int64
	Capabilities []Capability
}

// Authorize is the single allow/deny decision point. The caller is allowed
// when it holds any of the required capabilities.
func Authorize(id *Identity, required ...Capability) bool {
	if id == nil {
		return false
	}
	for _, req := range required {
		for _, have := range id.Capabilities {
			if have == req {
				return true
			}
		}
	}
	return false
}
