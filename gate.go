package heritage

import "fmt"

// Refusal reasons recorded for members that were not installed.
const (
	reasonMissing         = "source does not own member"
	reasonExists          = "host already owns member"
	reasonNotConfigurable = "host member is not configurable"
	reasonNotExtensible   = "host is not extensible"
	reasonMalformed       = "malformed input"
	reasonInstall         = "install failed"
)

// Clonable decides whether source's own member name may be copied onto
// host. On success it returns the source descriptor; when override is set
// and host already owns a configurable member of that name, that member has
// been removed and the caller is expected to install the returned
// descriptor immediately.
func (c *Cloner) Clonable(host, source *Object, name string, override bool) (*Descriptor, bool) {
	d, reason := c.clonable(host, source, name, override)
	return d, reason == ""
}

func (c *Cloner) clonable(host, source *Object, name string, override bool) (*Descriptor, string) {
	if host == nil || source == nil || name == "" {
		return nil, reasonMalformed
	}
	d, ok := source.Own(name)
	if !ok {
		return nil, reasonMissing
	}
	if existing, ok := host.Own(name); ok {
		if !override {
			return nil, reasonExists
		}
		if !existing.Configurable || !host.Delete(name) {
			return nil, trace(c.tracer, fmt.Sprintf("member %q is not configurable and could not be mirrored on %s", name, host), nil, reasonNotConfigurable)
		}
	} else if !host.IsExtensible() {
		return nil, trace(c.tracer, fmt.Sprintf("could not assign member %q to non-extensible %s", name, host), nil, reasonNotExtensible)
	}
	return d, ""
}
