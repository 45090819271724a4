package pdf_writer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const producer = "img2pdf"

// fixed object numbers, everything else is allocated while writing
const (
	catalogObjID = 1
	pagesObjID   = 2
	infoObjID    = 3
)

type countingWriter struct {
	w      io.Writer
	offset int64
}

func (cw *countingWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	cw.offset += int64(n)
	return n, err
}

type pdfWriter struct {
	bw      *bufio.Writer
	cw      *countingWriter
	offsets []int64 // offsets[id-1] is the byte offset of object id
	nextID  int
	written map[*imageObject]int
}

func newPDFWriter(dst io.Writer) *pdfWriter {
	cw := &countingWriter{w: dst}
	return &pdfWriter{
		cw:      cw,
		bw:      bufio.NewWriterSize(cw, 1024*1024),
		offsets: make([]int64, infoObjID),
		nextID:  infoObjID + 1,
		written: make(map[*imageObject]int),
	}
}

func (pw *pdfWriter) getOffset() int64 {
	return pw.cw.offset + int64(pw.bw.Buffered())
}

func (pw *pdfWriter) allocObject() int {
	id := pw.nextID
	pw.nextID++
	pw.offsets = append(pw.offsets, 0)
	return id
}

func (pw *pdfWriter) beginObject(id int) {
	pw.offsets[id-1] = pw.getOffset()
	fmt.Fprintf(pw.bw, "%d 0 obj\n", id)
}

func (pw *pdfWriter) endObject() {
	pw.bw.WriteString("endobj\n")
}

func (pw *pdfWriter) writeStream(dict string, data []byte) {
	pw.bw.WriteString("<<\n")
	pw.bw.WriteString(dict)
	fmt.Fprintf(pw.bw, "/Length %d\n", len(data))
	pw.bw.WriteString(">>\nstream\n")
	pw.bw.Write(data)
	pw.bw.WriteString("\nendstream\n")
}

func (pw *pdfWriter) writeDocument(d *Document) error {
	pw.bw.WriteString("%PDF-1.7\n%\xFF\xFF\xFF\xFF\n")

	pageIDs := make([]int, 0, len(d.pages))
	for _, p := range d.pages {
		pageIDs = append(pageIDs, pw.writePage(p))
	}

	pw.beginObject(pagesObjID)
	pw.bw.WriteString("<<\n/Type /Pages\n")
	fmt.Fprintf(pw.bw, "/Count %d\n", len(pageIDs))
	pw.bw.WriteString("/Kids [")
	for i, id := range pageIDs {
		if i > 0 {
			pw.bw.WriteString(" ")
		}
		fmt.Fprintf(pw.bw, "%d 0 R", id)
	}
	pw.bw.WriteString("]\n>>\n")
	pw.endObject()

	pw.beginObject(catalogObjID)
	fmt.Fprintf(pw.bw, "<<\n/Type /Catalog\n/Pages %d 0 R\n>>\n", pagesObjID)
	pw.endObject()

	pw.beginObject(infoObjID)
	pw.bw.WriteString("<<\n")
	if d.title != "" {
		fmt.Fprintf(pw.bw, "/Title %s\n", textString(d.title))
	}
	fmt.Fprintf(pw.bw, "/Producer %s\n>>\n", textString(producer))
	pw.endObject()

	pw.writeTrailer()

	return pw.bw.Flush()
}

func (pw *pdfWriter) writeImage(obj *imageObject) int {
	if id, ok := pw.written[obj]; ok {
		return id
	}

	smaskID := 0
	if obj.smask != nil {
		smaskID = pw.writeImage(obj.smask)
	}

	id := pw.allocObject()
	pw.beginObject(id)
	var dict strings.Builder
	dict.WriteString("/Type /XObject\n/Subtype /Image\n")
	fmt.Fprintf(&dict, "/Width %d\n/Height %d\n", obj.width, obj.height)
	fmt.Fprintf(&dict, "/ColorSpace %s\n/BitsPerComponent 8\n", obj.colorSpace)
	fmt.Fprintf(&dict, "/Filter %s\n", obj.filter)
	if smaskID != 0 {
		fmt.Fprintf(&dict, "/SMask %d 0 R\n", smaskID)
	}
	pw.writeStream(dict.String(), obj.data)
	pw.endObject()

	pw.written[obj] = id
	return id
}

func (pw *pdfWriter) writeContent(content string) int {
	id := pw.allocObject()
	pw.beginObject(id)
	pw.writeStream("", []byte(content))
	pw.endObject()
	return id
}

func (pw *pdfWriter) writePage(p *Page) int {
	var content strings.Builder
	var resources strings.Builder

	n := 0
	for _, l := range p.layers {
		for _, pl := range l.placements {
			n++
			imgName := fmt.Sprintf("Im%d", n)
			imgID := pw.writeImage(pl.obj)
			fmt.Fprintf(&resources, " /%s %d 0 R", imgName, imgID)
			fmt.Fprintf(&content, "q\n%s 0 0 %s %s %s cm\n/%s Do\nQ\n",
				formatReal(pl.width), formatReal(pl.height),
				formatReal(pl.x), formatReal(pl.y), imgName)
		}
	}

	contentID := pw.writeContent(content.String())

	id := pw.allocObject()
	pw.beginObject(id)
	pw.bw.WriteString("<<\n/Type /Page\n")
	fmt.Fprintf(pw.bw, "/Parent %d 0 R\n", pagesObjID)
	fmt.Fprintf(pw.bw, "/MediaBox [0 0 %s %s]\n", formatReal(p.width), formatReal(p.height))
	if n > 0 {
		fmt.Fprintf(pw.bw, "/Resources << /XObject <<%s >> >>\n", resources.String())
	} else {
		pw.bw.WriteString("/Resources << >>\n")
	}
	fmt.Fprintf(pw.bw, "/Contents %d 0 R\n", contentID)
	pw.bw.WriteString(">>\n")
	pw.endObject()
	return id
}

func (pw *pdfWriter) writeTrailer() {
	startXref := pw.getOffset()
	total := len(pw.offsets) + 1

	fmt.Fprintf(pw.bw, "xref\n0 %d\n", total)
	fmt.Fprintf(pw.bw, "%010d %05d f \n", 0, 65535)
	for _, off := range pw.offsets {
		fmt.Fprintf(pw.bw, "%010d %05d n \n", off, 0)
	}
	fmt.Fprintf(pw.bw,
		"trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		total, catalogObjID, infoObjID, startXref,
	)
}

func formatReal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// textString encodes s as a PDF text string: a literal for printable ASCII,
// UTF-16BE hex with a byte order mark otherwise.
func textString(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return "(" + r.Replace(s) + ")"
	}

	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return "()"
	}
	return fmt.Sprintf("<%X>", b)
}
