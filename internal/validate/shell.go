package validate

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// shellCall is one simple command found in a parsed script
type shellCall struct {
	Name       string
	Args       []string
	Assigns    []string
	Background bool
}

// Words returns the program name followed by its arguments
func (c shellCall) Words() []string {
	return append([]string{c.Name}, c.Args...)
}

// shellScript is the structural view of a command string, including the
// bodies of sh -c and eval. When any of it is not valid bash, Parsed is
// false and callers fall back to regexes.
type shellScript struct {
	Parsed       bool
	Calls        []shellCall
	RecursiveFns []string
}

// HasProgram reports whether any call runs one of names, directly or
// behind a wrapper such as sudo, env or uv run.
func (s *shellScript) HasProgram(names ...string) bool {
	for _, c := range s.Calls {
		for _, w := range c.Words() {
			for _, n := range names {
				if w == n {
					return true
				}
			}
		}
	}
	return false
}

// HasAssignPrefix reports whether any call carries inline KEY=value assignments
func (s *shellScript) HasAssignPrefix() bool {
	for _, c := range s.Calls {
		if len(c.Assigns) > 0 {
			return true
		}
	}
	return false
}

// maxNesting bounds how deep sh -c and eval bodies are parsed
const maxNesting = 3

var nestedShells = map[string]bool{"sh": true, "bash": true, "zsh": true, "dash": true, "ksh": true}

func parseShell(cmd string) *shellScript {
	return parseNested(cmd, 0)
}

func parseNested(cmd string, depth int) *shellScript {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(cmd), "")
	if err != nil {
		return &shellScript{}
	}

	script := &shellScript{Parsed: true}
	for _, stmt := range file.Stmts {
		bg := stmt.Background
		syntax.Walk(stmt, func(node syntax.Node) bool {
			switch n := node.(type) {
			case *syntax.Stmt:
				if n.Background {
					bg = true
				}
			case *syntax.CallExpr:
				script.Calls = append(script.Calls, callFromExpr(n, bg))
			case *syntax.FuncDecl:
				if n.Name != nil && callsItselfTwice(n) {
					script.RecursiveFns = append(script.RecursiveFns, n.Name.Value)
				}
			}
			return true
		})
	}

	if depth < maxNesting {
		calls := script.Calls
		for _, c := range calls {
			body, ok := nestedBody(c)
			if !ok {
				continue
			}
			inner := parseNested(body, depth+1)
			if !inner.Parsed {
				script.Parsed = false
			}
			script.Calls = append(script.Calls, inner.Calls...)
			script.RecursiveFns = append(script.RecursiveFns, inner.RecursiveFns...)
		}
	}
	return script
}

// nestedBody extracts the script a call hands to another shell, as in
// bash -c "..." or eval "...".
func nestedBody(c shellCall) (string, bool) {
	words := c.Words()
	for i, w := range words {
		if w == "eval" && i+1 < len(words) {
			return strings.Join(words[i+1:], " "), true
		}
		if !nestedShells[w] {
			continue
		}
		for j := i + 1; j < len(words)-1; j++ {
			a := words[j]
			if !strings.HasPrefix(a, "-") || a == "--" {
				break
			}
			if !strings.HasPrefix(a, "--") && strings.Contains(a, "c") {
				return words[j+1], true
			}
		}
	}
	return "", false
}

func callFromExpr(call *syntax.CallExpr, bg bool) shellCall {
	c := shellCall{Background: bg}
	for _, a := range call.Assigns {
		if a.Name != nil {
			c.Assigns = append(c.Assigns, a.Name.Value)
		}
	}
	for i, w := range call.Args {
		s := wordString(w)
		if i == 0 {
			c.Name = s
			continue
		}
		c.Args = append(c.Args, s)
	}
	return c
}

// callsItselfTwice matches the fork bomb shape f(){ f | f & }, whatever f is named
func callsItselfTwice(fn *syntax.FuncDecl) bool {
	name := fn.Name.Value
	count := 0
	syntax.Walk(fn.Body, func(node syntax.Node) bool {
		if call, ok := node.(*syntax.CallExpr); ok && len(call.Args) > 0 {
			if wordString(call.Args[0]) == name {
				count++
			}
		}
		return true
	})
	return count >= 2
}

// wordString flattens literal and quoted parts. Parameter expansions are
// kept as $NAME and other expansions become empty.
func wordString(w *syntax.Word) string {
	if w == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(unescape(p.Value))
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				switch ip := inner.(type) {
				case *syntax.Lit:
					sb.WriteString(dblQuoteEscapes.Replace(ip.Value))
				case *syntax.ParamExp:
					if ip.Param != nil {
						sb.WriteString("$" + ip.Param.Value)
					}
				}
			}
		case *syntax.ParamExp:
			if p.Param != nil {
				sb.WriteString("$" + p.Param.Value)
			}
		}
	}
	return sb.String()
}

// dblQuoteEscapes are the backslash sequences bash resolves inside "..."
var dblQuoteEscapes = strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\$`, `$`, "\\`", "`", "\\\n", "")

// unescape drops the backslashes of an unquoted literal
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
