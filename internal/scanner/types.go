package scanner

// Marker is the literal that tags a cachebusted reference, both in filenames
// ("app_cb_1234.js") and in query strings ("?_cb_=1234").
const Marker = "_cb_"

// MaxTokenLen bounds the token characters any parser pattern will consume, so
// surrounding text is never misread as part of a token.
const MaxTokenLen = 16

// Kind discriminates how a reference encodes its bust token.
type Kind int

const (
	// KindPlain is a reference with no bust encoding present.
	KindPlain Kind = iota + 1
	// KindFilename embeds the token in the filename, before the extension.
	KindFilename
	// KindQuery carries the token as a _cb_ query parameter.
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindFilename:
		return "filename"
	case KindQuery:
		return "querystring"
	default:
		return "unknown"
	}
}

// Reference is one occurrence of an asset link in a source file. FullText is
// the exact matched substring and occurs verbatim in the scanned content;
// Path is the logical asset path with any existing bust token stripped out.
type Reference struct {
	SourceDir  string `json:"source_dir,omitempty"`
	SourceFile string `json:"source_file,omitempty"`
	Line       int    `json:"line"`
	Col        int    `json:"col"`
	FullText   string `json:"full_text"`
	Path       string `json:"path"`
	BustCode   string `json:"bust_code,omitempty"`
	Kind       Kind   `json:"kind"`
}
