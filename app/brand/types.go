package brand

// Caps applied when a profile is built. Values past a cap are dropped or truncated
// at construction time.
const (
	MaxContentChars   = 15000
	MaxFAQAnswerChars = 1000
	MaxFAQs           = 100
	MaxOtherLinks     = 100
	MaxHeroAnchors    = 50
	MaxDescription    = 1000
	MaxTitleChars     = 500 // brand name, product title, vendor and type
)

// Policy kinds recognised by the resolvers and persisted as policies.kind.
const (
	PolicyPrivacy = "privacy"
	PolicyReturn  = "return"
)

// Social platforms. Any other platform name is never produced.
const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
	PlatformTikTok    = "tiktok"
	PlatformYouTube   = "youtube"
	PlatformTwitter   = "twitter"
	PlatformX         = "x"
	PlatformLinkedIn  = "linkedin"
	PlatformPinterest = "pinterest"
)

type Profile struct {
	Name           string         `json:"brand_name,omitempty"`
	Origin         string         `json:"website"`
	Description    string         `json:"description,omitempty"`
	Catalog        []Product      `json:"product_catalog"`
	HeroItems      []Product      `json:"hero_products"`
	Policies       Policies       `json:"policies"`
	FAQs           []FAQ          `json:"faqs"`
	Socials        Socials        `json:"social_handles"`
	Contacts       Contacts       `json:"contact_details"`
	About          *About         `json:"about_us"`
	ImportantLinks ImportantLinks `json:"important_links"`
	Meta           Meta           `json:"scrape_meta"`
}

type Product struct {
	ID          int64             `json:"id,omitempty"`
	Handle      string            `json:"handle,omitempty"`
	Title       string            `json:"title,omitempty"`
	Vendor      string            `json:"vendor,omitempty"`
	ProductType string            `json:"product_type,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	PriceRange  map[string]string `json:"price_range,omitempty"`
	Images      []string          `json:"images,omitempty"`
	URL         string            `json:"url,omitempty"`
}

type Policy struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

type Policies struct {
	Privacy *Policy `json:"privacy_policy"`
	Return  *Policy `json:"return_policy"`
}

type About struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	URL      string `json:"url,omitempty"`
}

// Socials maps a platform name to the one URL kept for it.
type Socials map[string]string

type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

type ImportantLinks struct {
	OrderTracking string   `json:"order_tracking,omitempty"`
	ContactUs     string   `json:"contact_us,omitempty"`
	Blogs         string   `json:"blogs,omitempty"`
	Others        []string `json:"others"`
}

type Meta struct {
	RequestedAt string   `json:"requested_at"`
	Success     bool     `json:"success"`
	Errors      []string `json:"errors"`
}

// AddError appends a diagnostic to the profile metadata.
func (p *Profile) AddError(msg string) {
	p.Meta.Errors = append(p.Meta.Errors, msg)
}

// Policy returns the policy stored under kind, or nil.
func (p Policies) Policy(kind string) *Policy {
	switch kind {
	case PolicyPrivacy:
		return p.Privacy
	case PolicyReturn:
		return p.Return
	}
	return nil
}
