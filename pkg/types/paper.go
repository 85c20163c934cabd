// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the bilimkapsulu core:
// the normalized Paper record, search queries and results, reading-session
// entities, and stage configuration.
package types

// TopicCategory is one of the fixed set of twenty subject areas papers are
// filed under. Values are the Turkish display labels used throughout the app.
type TopicCategory string

const (
	TopicAI            TopicCategory = "Yapay Zeka"
	TopicMedicine      TopicCategory = "Tıp"
	TopicEconomics     TopicCategory = "Ekonomi"
	TopicPhysics       TopicCategory = "Fizik"
	TopicPsychology    TopicCategory = "Psikoloji"
	TopicEngineering   TopicCategory = "Mühendislik"
	TopicBiology       TopicCategory = "Biyoloji"
	TopicHistory       TopicCategory = "Tarih"
	TopicChemistry     TopicCategory = "Kimya"
	TopicMathematics   TopicCategory = "Matematik"
	TopicSociology     TopicCategory = "Sosyoloji"
	TopicPhilosophy    TopicCategory = "Felsefe"
	TopicLiterature    TopicCategory = "Edebiyat"
	TopicLaw           TopicCategory = "Hukuk"
	TopicPolitics      TopicCategory = "Siyaset Bilimi"
	TopicAstronomy     TopicCategory = "Astronomi"
	TopicArchitecture  TopicCategory = "Mimarlık"
	TopicEducation     TopicCategory = "Eğitim Bilimleri"
	TopicEnvironment   TopicCategory = "Çevre Bilimi"
	TopicArtHistory    TopicCategory = "Sanat Tarihi"
)

// topicSearchTerms maps each category to the English term sent to the
// external APIs.
var topicSearchTerms = map[TopicCategory]string{
	TopicAI:           "Artificial Intelligence",
	TopicMedicine:     "Medicine",
	TopicEconomics:    "Economics",
	TopicPhysics:      "Physics",
	TopicPsychology:   "Psychology",
	TopicEngineering:  "Engineering",
	TopicBiology:      "Biology",
	TopicHistory:      "History",
	TopicChemistry:    "Chemistry",
	TopicMathematics:  "Mathematics",
	TopicSociology:    "Sociology",
	TopicPhilosophy:   "Philosophy",
	TopicLiterature:   "Literature",
	TopicLaw:          "Law",
	TopicPolitics:     "Political Science",
	TopicAstronomy:    "Astronomy",
	TopicArchitecture: "Architecture",
	TopicEducation:    "Education",
	TopicEnvironment:  "Environmental Science",
	TopicArtHistory:   "Art History",
}

// AllTopics lists every category in display order.
var AllTopics = []TopicCategory{
	TopicAI, TopicMedicine, TopicEconomics, TopicPhysics, TopicPsychology,
	TopicEngineering, TopicBiology, TopicHistory, TopicChemistry,
	TopicMathematics, TopicSociology, TopicPhilosophy, TopicLiterature,
	TopicLaw, TopicPolitics, TopicAstronomy, TopicArchitecture,
	TopicEducation, TopicEnvironment, TopicArtHistory,
}

// SearchTerm returns the English search term for the category, or the
// category itself when it is not one of the known twenty.
func (c TopicCategory) SearchTerm() string {
	if term, ok := topicSearchTerms[c]; ok {
		return term
	}
	return string(c)
}

// IsValid reports whether c is one of the twenty known categories.
func (c TopicCategory) IsValid() bool {
	_, ok := topicSearchTerms[c]
	return ok
}

// DocumentType distinguishes journal articles from project reports.
type DocumentType string

const (
	DocArticle DocumentType = "ARTICLE"
	DocProject DocumentType = "PROJECT"
)

// Paper is the normalized record every source adapter produces. IDs carry a
// source prefix ("oa-", "arxiv-", "ss-"); curated papers have no prefix. The
// prefix is the source discriminant and must be preserved.
type Paper struct {
	ID            string        `json:"id" yaml:"id"`
	Title         string        `json:"title" yaml:"title"`
	OriginalTitle string        `json:"originalTitle" yaml:"original_title"`

	// Authors holds at most the first three author names.
	Authors    []string `json:"authors" yaml:"authors"`
	University string   `json:"university" yaml:"university"`

	PublicationYear int    `json:"publicationYear" yaml:"publication_year"`
	Journal         string `json:"journal" yaml:"journal"`

	// Abstract may be truncated with a trailing "..." marker.
	Abstract string `json:"abstract" yaml:"abstract"`

	DocumentType DocumentType  `json:"documentType" yaml:"document_type"`
	Keywords     []string      `json:"keywords" yaml:"keywords"`
	Category     TopicCategory `json:"category" yaml:"category"`

	PDFURL string `json:"pdfUrl,omitempty" yaml:"pdf_url,omitempty"`
	DOI    string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Citations is a non-negative count used for ranking and as the dedup
	// tiebreaker.
	Citations    int  `json:"citations" yaml:"citations"`
	IsOpenAccess bool `json:"isOpenAccess" yaml:"is_open_access"`

	ReadMinutes int `json:"readTimeMinutes" yaml:"read_minutes"`

	// IsExternal is true for anything fetched live from an API, false for
	// curated entries.
	IsExternal bool `json:"isExternal" yaml:"is_external"`
}
