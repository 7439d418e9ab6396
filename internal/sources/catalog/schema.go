package catalog

import "time"

// SeedFile is the top-level structure of the catalog seed. Stores are
// keyed by kind name (news, music, auto, life, group).
//
//	stores:
//	  music:
//	    categories:
//	      - id: jazz
//	        name: Jazz
//	    items:
//	      - id: t1
//	        title: So What
//	        category: jazz
//	        duration: 9m22s
type SeedFile struct {
	Stores map[string]StoreSeed `yaml:"stores"`
}

// StoreSeed is the seed catalog of one kind.
type StoreSeed struct {
	Categories []CategorySeed `yaml:"categories"`
	Items      []ItemSeed     `yaml:"items"`
}

// CategorySeed describes a category.
type CategorySeed struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ItemSeed describes a catalog item.
type ItemSeed struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description,omitempty"`
	Category    string            `yaml:"category"`
	Tags        []string          `yaml:"tags,omitempty"`
	Price       float64           `yaml:"price,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty"`
	Duration    time.Duration     `yaml:"duration,omitempty"`
	Rating      float64           `yaml:"rating,omitempty"`
	RatingCount int               `yaml:"ratingCount,omitempty"`
	ReviewCount int               `yaml:"reviewCount,omitempty"`
	Views       int64             `yaml:"views,omitempty"`
	Likes       int64             `yaml:"likes,omitempty"`
	Popular     bool              `yaml:"popular,omitempty"`
	CreatedAt   time.Time         `yaml:"createdAt,omitempty"`
}
