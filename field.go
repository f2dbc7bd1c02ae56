package crux

// Field names a value stored on a Resource.
type Field string

// Scalar metadata fields, stored in Resource.Fields.
const (
	Title         Field = "title"
	CanonicalURL  Field = "canonical-url"
	Description   Field = "description"
	SiteName      Field = "site-name"
	ThemeColorHex Field = "theme-color-hex"
	KeywordsCSV   Field = "keywords-csv"
	Author        Field = "author"
	FeedTitle     Field = "feed-title"
	Markdown      Field = "markdown"
)

// Numeric fields, stored in Resource.Objects.
const (
	// DurationMs holds the estimated reading time of the article as an
	// int64 number of milliseconds.
	DurationMs Field = "duration-ms"
)

// URL-valued fields, stored in Resource.URLs.
const (
	FaviconURL     Field = "favicon-url"
	BannerImageURL Field = "banner-image-url"
	FeedURL        Field = "feed-url"
	AmpURL         Field = "amp-url"
	VideoURL       Field = "video-url"
)
