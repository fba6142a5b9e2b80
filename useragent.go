package edgebridge

import (
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
)

// UserAgent represents a parsed user agent.
type UserAgent struct {
	Family string
	Major  string
	Minor  string
	Patch  string
}

// UserAgentParser is a function that parses a user agent string and returns
// structured UserAgent data. The bridge uses it to annotate access logs.
type UserAgentParser func(uastring string) UserAgent

// defaultUserAgentParser parses with the uap-core regex set bundled into
// uap-go. The parser is built on first use; building it is expensive.
func defaultUserAgentParser() UserAgentParser {
	var once sync.Once
	var parser *uaparser.Parser
	return func(uastring string) UserAgent {
		if uastring == "" {
			return UserAgent{}
		}
		once.Do(func() {
			parser = uaparser.NewFromSaved()
		})
		ua := parser.ParseUserAgent(uastring)
		return UserAgent{
			Family: ua.Family,
			Major:  ua.Major,
			Minor:  ua.Minor,
			Patch:  ua.Patch,
		}
	}
}
