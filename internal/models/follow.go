package models

// Follow is a directed subscription edge: UserID reads AuthorID's posts in
// their follower feed. The pair is unique and an edge never points back at
// its own user.
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_follow_not_self,user_id <> author_id" json:"user_id"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}
