package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"postboard/internal/models"
	"postboard/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupFixture is one group entry of a fixtures file.
type GroupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type groupsFile struct {
	Groups []GroupFixture `yaml:"groups"`
}

// DefaultGroups is used when no fixtures file is given.
var DefaultGroups = []GroupFixture{
	{Title: "Books", Slug: "books", Description: "Novels, poetry and reading lists."},
	{Title: "Cinema", Slug: "cinema", Description: "Films worth arguing about."},
	{Title: "Travel", Slug: "travel", Description: "Trip reports and routes."},
	{Title: "Cooking", Slug: "cooking", Description: "Recipes and kitchen disasters."},
}

// LoadGroups decodes a YAML fixtures document and validates every entry.
func LoadGroups(r io.Reader) ([]GroupFixture, error) {
	var doc groupsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode group fixtures: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Groups))
	for i, g := range doc.Groups {
		form := validation.GroupForm{Title: g.Title, Slug: g.Slug, Description: g.Description}
		if errs := form.Validate(); !errs.Empty() {
			return nil, fmt.Errorf("group %d (%q): invalid fields %v", i, g.Slug, errs.Fields())
		}
		if _, dup := seen[g.Slug]; dup {
			return nil, fmt.Errorf("group %d: duplicate slug %q", i, g.Slug)
		}
		seen[g.Slug] = struct{}{}
	}
	return doc.Groups, nil
}

// LoadGroupsFile reads fixtures from path.
func LoadGroupsFile(path string) ([]GroupFixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadGroups(f)
}

// Groups upserts fixtures by slug and returns the stored groups in fixture
// order.
func Groups(ctx context.Context, db *gorm.DB, fixtures []GroupFixture) ([]models.Group, error) {
	out := make([]models.Group, 0, len(fixtures))
	for _, item := range fixtures {
		group := models.Group{Title: item.Title, Slug: item.Slug, Description: item.Description}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(&group).Error
		if err != nil {
			return nil, fmt.Errorf("seed group %q: %w", item.Slug, err)
		}
		var stored models.Group
		if err := db.WithContext(ctx).Where("slug = ?", item.Slug).First(&stored).Error; err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}
