package term

import (
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UTF8 is the charset used when none is configured or detected.
const UTF8 = "UTF-8"

// LocaleCharset returns the charset named by the first non-empty of
// LC_ALL, LC_CTYPE and LANG (e.g. "ISO-8859-1" for "de_DE.ISO-8859-1@euro").
// It returns "" for locales without a charset such as "C".
func LocaleCharset() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return charsetFromLocale(v)
		}
	}
	return ""
}

func charsetFromLocale(locale string) string {
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	if i := strings.IndexByte(locale, '.'); i >= 0 {
		return locale[i+1:]
	}
	return ""
}

// CharsetWriter transcodes UTF-8 text to a terminal charset.
// For UTF-8, or a charset that cannot be resolved, it writes through unchanged.
// Runes the charset cannot represent are replaced.
//
// Each Write is transcoded in full and passed on in a single Write, so a
// frame is never split. It is not safe for concurrent use; callers write
// under the output lock.
type CharsetWriter struct {
	w    io.Writer
	enc  transform.Transformer
	buf  []byte
	name string
}

// NewCharsetWriter wraps w for the given charset name. An empty name means UTF-8.
func NewCharsetWriter(w io.Writer, charset string) *CharsetWriter {
	cw := &CharsetWriter{w: w, name: UTF8}
	if charset == "" {
		return cw
	}

	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil || enc == unicode.UTF8 {
		return cw
	}
	if name, err := ianaindex.MIME.Name(enc); err == nil {
		cw.name = name
	} else {
		cw.name = charset
	}
	cw.enc = encoding.ReplaceUnsupported(enc.NewEncoder())
	return cw
}

// Charset returns the effective charset name.
func (c *CharsetWriter) Charset() string {
	return c.name
}

// Write implements io.Writer. On success it reports all of p as written.
func (c *CharsetWriter) Write(p []byte) (int, error) {
	if c.enc == nil {
		return c.w.Write(p)
	}

	out, _, err := transform.Append(c.enc, c.buf[:0], p)
	c.buf = out
	if err != nil {
		return 0, err
	}

	n, err := c.w.Write(out)
	if err == nil && n < len(out) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close releases the writer. Nothing is buffered between writes, so it
// only exists to pair with NewCharsetWriter; it does not close the
// underlying writer.
func (c *CharsetWriter) Close() error {
	c.buf = nil
	return nil
}
