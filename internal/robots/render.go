package robots

import (
	"strings"
	"unicode"
)

const (
	userAgentDirective = "User-agent"
	disallowDirective  = "Disallow"
	allowDirective     = "Allow"
	sitemapDirective   = "Sitemap"
)

// Render writes the policy as robots exclusion directives, one block per crawler separated by a blank
// line. A Sitemap line is appended when the policy uses a sitemap and sitemapURL is not empty.
// Values holding control characters are dropped so they can not start new directives.
func Render(p *ResolvedPolicy, sitemapURL string) string {
	body := RenderDirectives(p)
	if p.UseSitemap {
		body = AppendSitemap(body, sitemapURL)
	}
	return body
}

// RenderDirectives renders the crawler blocks without the Sitemap line.
func RenderDirectives(p *ResolvedPolicy) string {
	var blocks []string
	switch {
	case p.DisallowAllRobots:
		blocks = append(blocks, block(WildcardName, []string{"/"}, nil))
	case p.AllowAllRobots:
		blocks = append(blocks, block(WildcardName, []string{""}, nil))
	default:
		for _, id := range p.Crawlers {
			agent := p.RobotName(id)
			if !ValidValue(agent) {
				continue
			}
			disallow, allow := validValues(p.DisallowRules[id]), validValues(p.AllowRules[id])
			if len(disallow) == 0 && len(allow) == 0 {
				continue
			}
			blocks = append(blocks, block(agent, disallow, allow))
		}
	}

	return strings.Join(blocks, "\n")
}

// AppendSitemap adds the Sitemap line to a body produced by RenderDirectives.
func AppendSitemap(body, sitemapURL string) string {
	if sitemapURL == "" || !ValidValue(sitemapURL) {
		return body
	}
	line := directive(sitemapDirective, sitemapURL) + "\n"
	if body == "" {
		return line
	}
	return body + "\n" + line
}

// ValidValue reports whether s can be written as a directive value: no control characters.
func ValidValue(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

func validValues(values []string) []string {
	valid := values[:0:0]
	for _, v := range values {
		if ValidValue(v) {
			valid = append(valid, v)
		}
	}
	return valid
}

func block(agent string, disallow, allow []string) string {
	var b strings.Builder
	b.WriteString(directive(userAgentDirective, agent))
	b.WriteByte('\n')
	for _, path := range disallow {
		b.WriteString(directive(disallowDirective, path))
		b.WriteByte('\n')
	}
	for _, path := range allow {
		b.WriteString(directive(allowDirective, path))
		b.WriteByte('\n')
	}
	return b.String()
}

func directive(name, value string) string {
	if value == "" {
		return name + ":"
	}
	return name + ": " + value
}
