package optid

import "strings"

const frameworkPath = "github.com/goliatone/go-optid"

// frameworkPrefixes are blocked by every filter so resolution never
// attributes its own frames.
var frameworkPrefixes = []string{
	frameworkPath + ".",
	frameworkPath + "/",
}

// DefaultHostNamespaces are the packages of the host and of the settings
// menus that build options on behalf of other modules. Matching is by plain
// prefix, so "net.minecraft" also covers "net.minecraftforge".
var DefaultHostNamespaces = []string{
	"net.caffeinemc.mods.sodium",
	"me.jellysquid.mods.sodium",
	"org.embeddedt.embeddium",
	"net.minecraft",
	"net.neoforged",
}

// DefaultBlockedPrefixes covers the Go runtime, reflection trampolines and
// the test harness.
var DefaultBlockedPrefixes = []string{
	"runtime.",
	"runtime/",
	"reflect.",
	"testing.",
}

// DefaultBlockedSubstrings names modules known to call through wrapper or
// proxy layers that would otherwise be attributed the option.
var DefaultBlockedSubstrings = []string{
	"flashback",
	"moulberry",
	"dynamic_fps",
	"axiom",
}

// FrameFilter decides which candidate names may be attributed. Frames of this
// package are always blocked.
type FrameFilter struct {
	prefixes   []string
	substrings []string
}

// NewFrameFilter builds a filter from blocked name prefixes and substrings.
func NewFrameFilter(prefixes, substrings []string) FrameFilter {
	return FrameFilter{
		prefixes:   appendNonEmpty(append([]string(nil), frameworkPrefixes...), prefixes),
		substrings: appendNonEmpty(nil, substrings),
	}
}

// Allowed reports whether name is eligible for attribution.
func (f FrameFilter) Allowed(name string) bool {
	_, blocked := f.blockedBy(name)
	return !blocked
}

// blockedBy returns the blocklist entry that excludes name.
func (f FrameFilter) blockedBy(name string) (string, bool) {
	for _, sub := range f.substrings {
		if strings.Contains(name, sub) {
			return sub, true
		}
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(name, prefix) {
			return prefix, true
		}
	}
	return "", false
}
