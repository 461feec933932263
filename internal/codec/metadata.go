package codec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"pdf-toolbox/internal/domain"
)

type infoEntry struct {
	key   string
	value string
}

func infoEntries(meta domain.Metadata) []infoEntry {
	all := []infoEntry{
		{"Title", meta.Title},
		{"Author", meta.Author},
		{"Subject", meta.Subject},
		{"Keywords", meta.Keywords},
		{"Creator", meta.Creator},
		{"Producer", meta.Producer},
		{"CreationDate", meta.CreationDate},
		{"ModDate", meta.ModDate},
	}
	entries := all[:0]
	for _, e := range all {
		if e.value != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// withMetadata rewrites the information dictionary of the serialized
// document in data.
func withMetadata(data []byte, meta domain.Metadata, conf *model.Configuration) ([]byte, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}

	if ctx.Info == nil {
		ref, err := ctx.IndRefForNewObject(types.Dict{})
		if err != nil {
			return nil, err
		}
		ctx.Info = ref
	}
	info, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("info dictionary missing")
	}

	for _, e := range infoEntries(meta) {
		info[e.key] = textObject(e.value)
	}
	ctx.XRefTable.Title = meta.Title
	ctx.XRefTable.Author = meta.Author
	ctx.XRefTable.Subject = meta.Subject
	ctx.XRefTable.Keywords = meta.Keywords
	ctx.XRefTable.Creator = meta.Creator

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// textObject encodes s as a PDF text string: a literal for ASCII, UTF-16BE
// with byte order mark otherwise.
func textObject(s string) types.Object {
	if isASCII(s) {
		return types.StringLiteral(escapeLiteral(s))
	}
	return types.NewHexLiteral(utf16BE(s))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

func utf16BE(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2+2*len(units))
	b = append(b, 0xFE, 0xFF)
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return b
}

// emptyDocument serializes a valid document without pages. pdfcpu cannot
// produce one from page extracts, so the file is written directly.
func emptyDocument(meta domain.Metadata) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	}

	trailer := "/Size %d /Root 1 0 R"
	if entries := infoEntries(meta); len(entries) > 0 {
		var dict strings.Builder
		dict.WriteString("<<")
		for _, e := range entries {
			dict.WriteString(" /" + e.key + " ")
			if isASCII(e.value) {
				dict.WriteString("(" + escapeLiteral(e.value) + ")")
			} else {
				fmt.Fprintf(&dict, "<%X>", utf16BE(e.value))
			}
		}
		dict.WriteString(" >>")
		objects = append(objects, dict.String())
		trailer += " /Info 3 0 R"
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", fmt.Sprintf(trailer, len(objects)+1), xref)
	return buf.Bytes()
}
