package il

import (
	"fmt"
	"strings"
)

// CallSite is the parsed operand of call, callvirt and newobj:
//
//	[instance] <return type> <Type>::<Name>(<param>, ...)
type CallSite struct {
	HasThis    bool
	ReturnType string
	Target     string
	Params     []string
}

// String renders the call site in its canonical form
func (c CallSite) String() string {
	var b strings.Builder
	if c.HasThis {
		b.WriteString("instance ")
	}
	b.WriteString(c.ReturnType)
	b.WriteByte(' ')
	b.WriteString(c.Target)
	b.WriteByte('(')
	b.WriteString(strings.Join(c.Params, ","))
	b.WriteByte(')')
	return b.String()
}

// ParseCallSite parses a callee signature
func ParseCallSite(operand string) (CallSite, error) {
	s := strings.TrimSpace(operand)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return CallSite{}, fmt.Errorf("callee %q has no parameter list", operand)
	}
	end := strings.LastIndexByte(s, ')')
	if end < open {
		return CallSite{}, fmt.Errorf("callee %q has an unterminated parameter list", operand)
	}

	fields := strings.Fields(s[:open])
	site := CallSite{}
	if len(fields) > 0 && fields[0] == "instance" {
		site.HasThis = true
		fields = fields[1:]
	}
	if len(fields) < 2 {
		return CallSite{}, fmt.Errorf("callee %q needs a return type and a target", operand)
	}

	site.Target = fields[len(fields)-1]
	if !strings.Contains(site.Target, "::") {
		return CallSite{}, fmt.Errorf("callee target %q is not of the form Type::Name", site.Target)
	}
	site.ReturnType = strings.Join(fields[:len(fields)-1], " ")
	site.Params = splitParams(s[open+1 : end])

	return site, nil
}

// splitParams splits a parameter list on top-level commas so generic
// arguments such as Dictionary`2<int32,string> stay intact.
func splitParams(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var params []string
	depth, start := 0, 0
	for i, r := range list {
		switch r {
		case '<', '[':
			depth++
		case '>', ']':
			depth--
		case ',':
			if depth == 0 {
				params = append(params, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(params, strings.TrimSpace(list[start:]))
}
