package models

// Category is a taxonomy entry a title may belong to (e.g. "Movies").
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:256;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:50;not null" json:"slug"`
}

// Genre is a taxonomy entry a title may carry any number of.
type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:256;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:50;not null" json:"slug"`
}

// Title is a catalogued work users review.
//
// Rating is never persisted: it is the mean of the title's review scores,
// recomputed on every read. A title with no reviews has a null rating.
type Title struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null;index" json:"name"`
	Year        int       `gorm:"not null" json:"year"`
	Description *string   `json:"description"`
	CategoryID  *uint     `gorm:"index" json:"-"`
	Category    *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category"`
	Genres      []Genre   `gorm:"many2many:title_genres" json:"genre"`
	Rating      *float64  `gorm:"->;-:migration" json:"rating"`
}

// TitleGenre is the explicit join entity between titles and genres. The
// genre reference is nullable so deleting a genre detaches it from titles
// instead of deleting join history.
type TitleGenre struct {
	ID      uint   `gorm:"primaryKey"`
	TitleID uint   `gorm:"index;not null"`
	Title   Title  `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
	GenreID *uint  `gorm:"index"`
	Genre   *Genre `gorm:"foreignKey:GenreID;constraint:OnDelete:SET NULL"`
}
