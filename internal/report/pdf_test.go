package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFont is the /F1 font of a generated document. Verbs in dict refer to
// the object numbers of extra, in order.
type testFont struct {
	dict  string
	extra []string
}

var helvetica = testFont{dict: "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"}

// identityFont is a Type0 font with two-byte Identity-H codes. Codes 0x0020
// to 0x007E map to ASCII and 0x0100 maps to U+0939.
var identityFont = testFont{
	dict: "<< /Type /Font /Subtype /Type0 /BaseFont /ABCDEF+NotoSans /Encoding /Identity-H /DescendantFonts [%[1]d 0 R] /ToUnicode %[2]d 0 R >>",
	extra: []string{
		"<< /Type /Font /Subtype /CIDFontType2 /BaseFont /ABCDEF+NotoSans /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /DW 1000 >>",
		pdfStream(`/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
1 beginbfrange
<0020> <007E> <0020>
endbfrange
1 beginbfchar
<0100> <0939>
endbfchar
endcmap
CMapName currentdict /CMap defineresource pop
end
end`),
	},
}

func pdfStream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

// cid hex-encodes s as two-byte codes for identityFont.
func cid(s string) string {
	var b strings.Builder
	b.WriteByte('<')
	for _, r := range s {
		fmt.Fprintf(&b, "%04X", r)
	}
	b.WriteByte('>')
	return b.String()
}

// buildPDF writes a minimal Helvetica PDF with one page per content stream.
func buildPDF(t *testing.T, contents ...string) []byte {
	t.Helper()
	return buildPDFWithFont(t, helvetica, contents...)
}

func buildPDFWithFont(t *testing.T, font testFont, contents ...string) []byte {
	t.Helper()

	fontDict := font.dict
	if len(font.extra) > 0 {
		refs := make([]any, len(font.extra))
		for i := range font.extra {
			refs[i] = 4 + 2*len(contents) + i
		}
		fontDict = fmt.Sprintf(font.dict, refs...)
	}

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)),
		fontDict,
	)

	for i, content := range contents {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			pdfStream(content),
		)
	}
	objects = append(objects, font.extra...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func samplePDF(t *testing.T) []byte {
	return buildPDF(t,
		"BT /F1 12 Tf 72 720 Td (Hemoglobin: 13.5 g/dL) Tj ET\nBT /F1 12 Tf 72 700 Td (Glucose) Tj ET\nBT /F1 12 Tf 200 700 Td (95 mg/dL) Tj ET",
		"BT /F1 12 Tf 14 TL 72 720 Td [(Vit) 20 (amin D)] TJ T* (Normal) Tj ET",
	)
}

const samplePDFText = "Hemoglobin: 13.5 g/dL\nGlucose 95 mg/dL\n\nVitamin D\nNormal"

func TestExtractText(t *testing.T) {
	text, err := ExtractText(samplePDF(t))
	require.NoError(t, err)
	assert.Equal(t, samplePDFText, text)
}

func TestExtractText_IdentityEncodedFont(t *testing.T) {
	data := buildPDFWithFont(t, identityFont,
		"BT /F1 12 Tf 72 720 Td "+cid("Hemoglobin: 13.5 g/dL")+" Tj ET\n"+
			"BT /F1 12 Tf 72 700 Td <01000069> Tj ET",
	)

	text, err := ExtractText(data)
	require.NoError(t, err)
	assert.Equal(t, "Hemoglobin: 13.5 g/dL\n\u0939i", text)
}

func TestExtractText_FlippedCoordinates(t *testing.T) {
	data := buildPDF(t,
		"q 1 0 0 -1 0 792 cm\n"+
			"BT /F1 12 Tf 72 72 Td (Top line) Tj ET\n"+
			"BT /F1 12 Tf 72 100 Td (Second line) Tj ET\n"+
			"Q\n"+
			"BT /F1 12 Tf 72 72 Td (Footer) Tj ET",
	)

	text, err := ExtractText(data)
	require.NoError(t, err)
	assert.Equal(t, "Top line\nSecond line\nFooter", text)
}

func TestExtractText_PageWithoutText(t *testing.T) {
	text, err := ExtractText(buildPDF(t, "0 0 m 100 100 l S", "BT /F1 12 Tf 72 720 Td (only page two) Tj ET"))
	require.NoError(t, err)
	assert.Equal(t, "only page two", text)
}

func TestExtractText_Rejects(t *testing.T) {
	_, err := ExtractText(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = ExtractText([]byte("just some text, not a document"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = ExtractText([]byte("%PDF-1.4\nthis is not really a pdf"))
	assert.ErrorIs(t, err, ErrInvalidPDF)
}
