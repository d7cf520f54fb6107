package rendering

import (
	"archive/zip"
	"bytes"
	"context"
	"image/png"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/smart-resume/internal/document"
	"github.com/jonathan/smart-resume/internal/types"
)

func sampleDocument() *document.Document {
	req := &types.ResumeRequest{
		Profile: types.Profile{
			Name:   "Ada Lovelace",
			Email:  "ada@example.com",
			Skills: "Python, SQL",
		},
		Experience: []types.ExperienceEntry{{Title: "Engineer", Company: "Acme", Dates: "2020", Description: "Built <things> & more"}},
	}
	return (&document.Assembler{}).Assemble(context.Background(), req)
}

type parsedParagraph struct {
	style string
	text  string
}

func parseDOCX(t *testing.T, data []byte) []parsedParagraph {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var out []parsedParagraph
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var style string
		if para.Properties != nil && para.Properties.Style != nil {
			style = para.Properties.Style.Val
		}
		var sb strings.Builder
		for _, child := range para.Children {
			run, ok := child.(*docx.Run)
			if !ok {
				continue
			}
			for _, rc := range run.Children {
				if text, ok := rc.(*docx.Text); ok {
					sb.WriteString(text.Text)
				}
			}
		}
		if sb.Len() == 0 {
			continue
		}
		out = append(out, parsedParagraph{style: style, text: sb.String()})
	}
	return out
}

func TestRenderDOCX_ParagraphsAndStyles(t *testing.T) {
	data, err := RenderDOCX(sampleDocument())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "PK", string(data[:2]))

	paras := parseDOCX(t, data)
	require.GreaterOrEqual(t, len(paras), 9)

	assert.Equal(t, parsedParagraph{"Heading1", "Ada Lovelace"}, paras[0])
	assert.Equal(t, "Heading2", paras[2].style)
	assert.Equal(t, "Skills", paras[2].text)
	assert.Equal(t, parsedParagraph{StyleBullet, "Python"}, paras[3])
	assert.Equal(t, parsedParagraph{StyleBullet, "SQL"}, paras[4])
	assert.Equal(t, parsedParagraph{"Heading3", "Engineer"}, paras[6])
	assert.Equal(t, "Built <things> & more", paras[8].text)
}

func readZipEntry(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("archive has no %s", name)
	return ""
}

func TestRenderDOCX_StylesAreDefined(t *testing.T) {
	data, err := RenderDOCX(sampleDocument())
	require.NoError(t, err)

	styles := readZipEntry(t, data, "word/styles.xml")
	for _, id := range []string{"Normal", HeadingStyle(1), HeadingStyle(2), HeadingStyle(3), StyleBullet} {
		assert.Contains(t, styles, `w:styleId="`+id+`"`, "style %s", id)
	}

	// Every style referenced from the body must exist in styles.xml.
	body := readZipEntry(t, data, "word/document.xml")
	for _, m := range regexp.MustCompile(`pStyle w:val="([^"]+)"`).FindAllStringSubmatch(body, -1) {
		assert.Contains(t, styles, `w:styleId="`+m[1]+`"`)
	}

	numbering := readZipEntry(t, data, "word/numbering.xml")
	assert.Contains(t, numbering, `w:numFmt w:val="bullet"`)
	assert.Contains(t, numbering, `w:num w:numId="1"`)
	assert.Contains(t, readZipEntry(t, data, "word/_rels/document.xml.rels"), `Target="numbering.xml"`)
	assert.Contains(t, readZipEntry(t, data, "[Content_Types].xml"), "/word/numbering.xml")
}

func TestRenderDOCX_RendersIndependently(t *testing.T) {
	first, err := RenderDOCX(sampleDocument())
	require.NoError(t, err)
	second, err := RenderDOCX(&document.Document{})
	require.NoError(t, err)

	assert.Len(t, parseDOCX(t, second), 0)
	assert.NotEmpty(t, parseDOCX(t, first))
}

func TestRenderDOCX_Nil(t *testing.T) {
	_, err := RenderDOCX(nil)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestExport_Base64RoundTrip(t *testing.T) {
	data, err := RenderDOCX(sampleDocument())
	require.NoError(t, err)

	d := Export("Ada Lovelace", data, ExportOptions{})
	decoded, err := DecodeBase64(d.Base64)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(data, decoded))
	assert.Equal(t, len(data), d.Size)
}

func TestExport_LinkFormat(t *testing.T) {
	d := Export("Ada", []byte("abc"), ExportOptions{})

	assert.Equal(t, "Ada_resume.docx", d.Filename)
	assert.Equal(t, "YWJj", d.Base64)
	assert.Equal(t, "data:"+DocxMIME+";base64,YWJj", d.DataURI)
	assert.Equal(t, `<a href="data:`+DocxMIME+`;base64,YWJj" download="Ada_resume.docx">Download Resume (docx)</a>`, d.Link)
	assert.False(t, d.Unsafe)
}

func TestExport_UnsafeNamePassesThroughByDefault(t *testing.T) {
	name := `Eve" onclick="x`
	d := Export(name, []byte("abc"), ExportOptions{})

	assert.True(t, d.Unsafe)
	assert.Equal(t, name+"_resume.docx", d.Filename)
	assert.Contains(t, d.Link, `download="Eve" onclick="x_resume.docx"`)
}

func TestExport_SanitizeNames(t *testing.T) {
	d := Export(`Eve" <b>/x`, []byte("abc"), ExportOptions{SanitizeNames: true})

	assert.False(t, d.Unsafe)
	assert.Equal(t, "Eve_ _b__x_resume.docx", d.Filename)
	assert.Contains(t, d.Link, `download="Eve_ _b__x_resume.docx"`)
	assert.NotContains(t, d.Link, "<b>")
}

func TestUnsafeName(t *testing.T) {
	assert.False(t, UnsafeName("Ada Lovelace"))
	assert.False(t, UnsafeName("José Núñez"))
	assert.True(t, UnsafeName("a/b"))
	assert.True(t, UnsafeName("a<b"))
	assert.True(t, UnsafeName("line\nbreak"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b", SanitizeFilename("a/b"))
	assert.Equal(t, "candidate", SanitizeFilename("   "))
}

func TestDecodeBase64_Invalid(t *testing.T) {
	_, err := DecodeBase64("!!not base64!!")
	assert.Error(t, err)
}

func decodeQR(t *testing.T, data []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func TestEncodeQR_RoundTrip(t *testing.T) {
	for _, url := range []string{
		"https://linkedin.com/in/ada",
		"https://www.linkedin.com/in/ada-lovelace-123/?utm=x&y=z",
	} {
		data, err := EncodeQR(url, DefaultQRModulePixels)
		require.NoError(t, err)
		assert.Equal(t, url, decodeQR(t, data))
	}
}

func TestEncodeQR_ModuleSize(t *testing.T) {
	small, err := EncodeQR("https://linkedin.com/in/ada", 2)
	require.NoError(t, err)
	large, err := EncodeQR("https://linkedin.com/in/ada", 10)
	require.NoError(t, err)

	smallImg, err := png.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	largeImg, err := png.Decode(bytes.NewReader(large))
	require.NoError(t, err)

	assert.Equal(t, smallImg.Bounds().Dx()*5, largeImg.Bounds().Dx())
}

func TestEncodeQR_TooLong(t *testing.T) {
	_, err := EncodeQR(strings.Repeat("x", 5000), DefaultQRModulePixels)
	var qrErr *QRError
	require.ErrorAs(t, err, &qrErr)
}

func TestProfileURL(t *testing.T) {
	tests := []struct {
		base, linkedin, want string
	}{
		{"https://linkedin.com/in/", "ada", "https://linkedin.com/in/ada"},
		{"https://linkedin.com/in", "ada", "https://linkedin.com/in/ada"},
		{"https://linkedin.com/in/", "/ada", "https://linkedin.com/in/ada"},
		{"https://linkedin.com/in/", "", "https://linkedin.com/in/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProfileURL(tt.base, tt.linkedin))
	}
}

// A full URL is kept rather than appended to the base, which would otherwise
// yield https://linkedin.com/in/https://...
func TestProfileURL_FullURLPassesThrough(t *testing.T) {
	base := "https://linkedin.com/in/"

	assert.Equal(t, "https://www.linkedin.com/in/ada", ProfileURL(base, "https://www.linkedin.com/in/ada"))
	assert.Equal(t, "HTTP://linkedin.com/in/ada", ProfileURL(base, "HTTP://linkedin.com/in/ada"))
	assert.NotContains(t, ProfileURL(base, "https://www.linkedin.com/in/ada"), "/in/https:")
}
