// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Block is one positioned text run from a PDF page. Coordinates are PDF
// user space (origin bottom-left, y grows upward).
type Block struct {
	Page int
	X, Y float64
	Text string
}

// DigitalText extracts the digital text layer of a PDF, reassembled in
// reading order: blocks sort top-to-bottom, then left-to-right within a
// row band, reconstructing natural order across multi-column layouts.
func DigitalText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", fmt.Errorf("reading PDF %s: %w", path, err)
	}

	var blocks []Block
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		blocks = append(blocks, parseContentStream(data, pageNr)...)
	}

	return AssembleBlocks(OrderBlocks(blocks)), nil
}

// rowBand quantizes a y coordinate so blocks on the same visual line sort
// into one band. One point of slack absorbs baseline jitter.
const rowBand = 1.0

// OrderBlocks sorts blocks into reading order: page, then top-to-bottom
// (descending y in PDF user space), then left-to-right within a row band.
func OrderBlocks(blocks []Block) []Block {
	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		ba, bb := math.Round(a.Y/rowBand), math.Round(b.Y/rowBand)
		if ba != bb {
			return ba > bb // higher y first: top of page down
		}
		return a.X < b.X
	})
	return sorted
}

// AssembleBlocks joins ordered blocks into text: newline between blocks,
// blank line between pages.
func AssembleBlocks(blocks []Block) string {
	var sb strings.Builder
	lastPage := 0
	for _, b := range blocks {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			if b.Page != lastPage {
				sb.WriteString("\n\n")
			} else {
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(text)
		lastPage = b.Page
	}
	return sb.String()
}

// parseContentStream walks a page content stream and collects one Block per
// BT..ET text object, positioned by the first Tm/Td seen inside it. The
// scanner understands just enough of the operator syntax for text: string
// literals with escapes, TJ arrays, and the positioning operators.
func parseContentStream(data []byte, page int) []Block {
	var blocks []Block

	var (
		inText   bool
		x, y     float64
		havePos  bool
		operands []string
		text     strings.Builder
	)

	flush := func() {
		if t := strings.TrimSpace(text.String()); t != "" {
			blocks = append(blocks, Block{Page: page, X: x, Y: y, Text: t})
		}
		text.Reset()
		havePos = false
	}

	pop2 := func() (float64, float64, bool) {
		if len(operands) < 2 {
			return 0, 0, false
		}
		a, errA := strconv.ParseFloat(operands[len(operands)-2], 64)
		b, errB := strconv.ParseFloat(operands[len(operands)-1], 64)
		return a, b, errA == nil && errB == nil
	}

	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '%': // comment to end of line
			for i < len(data) && data[i] != '\n' {
				i++
			}
		case c == '(':
			lit, next := parseStringLiteral(data, i)
			if inText {
				operands = append(operands, "("+lit)
			}
			i = next
		case c == '[', c == ']', c == '{', c == '}':
			i++
		case c == '<':
			// Hex string or dict open; skip to matching close.
			if i+1 < len(data) && data[i+1] == '<' {
				i += 2
			} else {
				for i < len(data) && data[i] != '>' {
					i++
				}
				i++
			}
		case c == '/':
			start := i
			i++
			for i < len(data) && !isDelim(data[i]) {
				i++
			}
			operands = append(operands, string(data[start:i]))
		case isWhite(c):
			i++
		default:
			start := i
			for i < len(data) && !isDelim(data[i]) {
				i++
			}
			tok := string(data[start:i])
			if isNumber(tok) {
				operands = append(operands, tok)
				continue
			}

			switch tok {
			case "BT":
				inText = true
				x, y = 0, 0
			case "ET":
				if inText {
					flush()
				}
				inText = false
			case "Td", "TD":
				if tx, ty, ok := pop2(); ok && inText {
					if havePos {
						x += tx
						y += ty
					} else {
						x, y = tx, ty
						havePos = true
					}
					if ty != 0 && text.Len() > 0 {
						text.WriteByte('\n')
					}
				}
			case "Tm":
				if len(operands) >= 6 {
					e, errE := strconv.ParseFloat(operands[len(operands)-2], 64)
					f, errF := strconv.ParseFloat(operands[len(operands)-1], 64)
					if errE == nil && errF == nil && inText {
						x, y = e, f
						havePos = true
					}
				}
			case "T*":
				if inText && text.Len() > 0 {
					text.WriteByte('\n')
				}
			case "Tj", "'", "\"":
				if inText {
					for _, op := range operands {
						if strings.HasPrefix(op, "(") {
							if tok != "Tj" && text.Len() > 0 {
								text.WriteByte('\n')
							}
							text.WriteString(op[1:])
						}
					}
				}
			case "TJ":
				if inText {
					for _, op := range operands {
						if strings.HasPrefix(op, "(") {
							text.WriteString(op[1:])
						}
					}
				}
			}
			operands = operands[:0]
		}
	}

	if inText {
		flush()
	}
	return blocks
}

// parseStringLiteral decodes a PDF string literal starting at the opening
// parenthesis; it returns the decoded text and the index after the closing
// parenthesis. Balanced nested parentheses and backslash escapes are
// handled, including octal byte escapes.
func parseStringLiteral(data []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 0
	i := start
	for i < len(data) {
		c := data[i]
		switch c {
		case '\\':
			if i+1 >= len(data) {
				i++
				continue
			}
			i++
			switch data[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '(', ')', '\\':
				sb.WriteByte(data[i])
			default:
				if data[i] >= '0' && data[i] <= '7' {
					val := int(data[i] - '0')
					for n := 0; n < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; n++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(data[i])
				}
			}
			i++
		case '(':
			if depth > 0 {
				sb.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i
}

func isWhite(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelim(c byte) bool {
	return isWhite(c) || c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' || c == '/' || c == '%'
}

func isNumber(tok string) bool {
	if tok == "" {
		return false
	}
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}
