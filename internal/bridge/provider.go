package bridge

import "fmt"

// Provider selects which backing store(s) persistence operations target.
type Provider int

const (
	// ProviderLocal writes and reads only the local preference store.
	ProviderLocal Provider = iota
	// ProviderRemote writes and reads only the backend API.
	ProviderRemote
	// ProviderBoth writes locally first (authoritative for immediate reads)
	// and mirrors to the backend; loads prefer the backend and fall back to
	// local.
	ProviderBoth
)

func (p Provider) String() string {
	switch p {
	case ProviderLocal:
		return "local"
	case ProviderRemote:
		return "remote"
	case ProviderBoth:
		return "both"
	default:
		return fmt.Sprintf("provider(%d)", int(p))
	}
}

func (p *Provider) UnmarshalText(text []byte) error {
	switch string(text) {
	case "local":
		*p = ProviderLocal
	case "remote":
		*p = ProviderRemote
	case "both":
		*p = ProviderBoth
	default:
		return fmt.Errorf("unknown provider: %s", text)
	}
	return nil
}

// ProviderFunc supplies the current provider selection. It is consulted on
// every operation so the selection can change at runtime.
type ProviderFunc func() Provider

// Fixed returns a ProviderFunc that always selects p.
func Fixed(p Provider) ProviderFunc {
	return func() Provider { return p }
}

func (p Provider) UsesLocal() bool  { return p != ProviderRemote }
func (p Provider) UsesRemote() bool { return p != ProviderLocal }
