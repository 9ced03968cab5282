package models

// Room describes a bookable room from the rooms catalog file.
type Room struct {
	Number    int64  `yaml:"number" json:"number"`
	Name      string `yaml:"name" json:"name"`
	Floor     int64  `yaml:"floor" json:"floor"`
	SortOrder int64  `yaml:"sort_order" json:"sort_order"`
	IsActive  bool   `yaml:"is_active" json:"is_active"`
}
