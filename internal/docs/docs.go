package docs

import (
	"bytes"
	_ "embed"
	"net/http"

	"github.com/yuin/goldmark"
)

//go:embed api.md
var apiReference []byte

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>DocBot API Reference</title>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; border-radius: 3px; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
</style>
</head>
<body>
`

// Handler renders the embedded API reference markdown to HTML. The page is
// rendered once at startup.
func Handler() (http.HandlerFunc, error) {
	var buf bytes.Buffer
	buf.WriteString(pageShell)
	if err := goldmark.New().Convert(apiReference, &buf); err != nil {
		return nil, err
	}
	buf.WriteString("</body>\n</html>\n")

	page := buf.Bytes()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}, nil
}
