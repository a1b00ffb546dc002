package codegen

import (
	"strconv"
	"strings"

	"github.com/zhairuihao/anchor-src-gen/internal/idl"
)

// emitErrors writes the program error type, one value per error code and
// the code lookup.
func (c *Context) emitErrors(u *Unit) *Unit {
	if len(c.Doc.Errors) == 0 {
		return u
	}
	u.Import(importFmt)
	typ := c.claim(c.Program+"Error", "_")
	table := c.claim(idl.MemberName(c.Program)+"Errors", "_")

	u.P("// %s is a custom error returned by the %s program.", typ, c.Doc.Name)
	u.P("type %s struct {", typ)
	u.P("Code uint32")
	u.P("Name string")
	u.P("Msg  string")
	u.P("}")
	u.P("")
	u.P("func (e *%s) Error() string {", typ)
	u.P("return fmt.Sprintf(%s, e.Code, e.Name, e.Msg)", strconv.Quote(c.Doc.Name+" error %d %s: %s"))
	u.P("}")
	u.P("")

	vars := make([]string, len(c.Doc.Errors))
	u.P("var (")
	for i, e := range c.Doc.Errors {
		vars[i] = c.claim("Err"+c.Program+e.Name, "_")
		if e.Msg != "" {
			u.P("// %s is error %d: %s", vars[i], e.Code, strings.Join(strings.Fields(e.Msg), " "))
		}
		u.P("%s = &%s{Code: %d, Name: %q, Msg: %q}", vars[i], typ, e.Code, e.RawName, e.Msg)
	}
	u.P(")")
	u.P("")
	u.P("var %s = map[uint32]*%s{", table, typ)
	for i, e := range c.Doc.Errors {
		u.P("%d: %s,", e.Code, vars[i])
	}
	u.P("}")
	u.P("")
	u.P("// %sFromCode returns the error with code. Unknown codes fail.", typ)
	u.P("func %sFromCode(code uint32) (*%s, error) {", typ, typ)
	u.P("if e, ok := %s[code]; ok {", table)
	u.P("return e, nil")
	u.P("}")
	u.P("return nil, fmt.Errorf(%s, code)", strconv.Quote(c.Doc.Name+": unknown error code %d"))
	u.P("}")
	u.P("")
	return u
}
