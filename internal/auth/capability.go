package auth

import "sort"

// Capability is a named permission tag.
type Capability string

// CapabilityBlogger allows writing to the blog.
const CapabilityBlogger Capability = "blogger"

// Capabilities is a set of capability tags.
type Capabilities map[Capability]struct{}

func NewCapabilities(list ...Capability) Capabilities {
	c := make(Capabilities, len(list))
	for _, tag := range list {
		c[tag] = struct{}{}
	}
	return c
}

func (c Capabilities) Has(tag Capability) bool {
	_, ok := c[tag]
	return ok
}

func (c Capabilities) Add(tag Capability) {
	c[tag] = struct{}{}
}

// List returns the tags in sorted order.
func (c Capabilities) List() []string {
	out := make([]string, 0, len(c))
	for tag := range c {
		out = append(out, string(tag))
	}
	sort.Strings(out)
	return out
}
