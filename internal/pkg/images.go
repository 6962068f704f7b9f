package pkg

import (
	"slices"

	"github.com/simp-lee/koiconsult/internal/domain"
	"gorm.io/gorm"
)

// UniqueIDs drops zero and repeated ids, keeping first-seen order.
func UniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// LoadImages fetches exactly the images named by ids, failing with a
// validation error if any of them does not exist.
func LoadImages(tx *gorm.DB, ids []uint) ([]domain.Image, error) {
	ids = UniqueIDs(ids)
	if len(ids) == 0 {
		return []domain.Image{}, nil
	}
	var images []domain.Image
	if err := tx.Where("id IN ?", ids).Find(&images).Error; err != nil {
		return nil, MapDBError(err)
	}
	if len(images) != len(ids) {
		return nil, domain.Validationf("One or more images do not exist")
	}
	return images, nil
}

// ReplaceImages sets the many-to-many "Images" association of owner to ids.
func ReplaceImages(tx *gorm.DB, owner any, ids []uint) error {
	images, err := LoadImages(tx, ids)
	if err != nil {
		return err
	}
	assoc := tx.Model(owner).Association("Images")
	if len(images) == 0 {
		return MapDBError(assoc.Clear())
	}
	return MapDBError(assoc.Replace(images))
}

// AppendImages adds ids to the "Images" association of owner. Ids already
// attached are left as they are.
func AppendImages(tx *gorm.DB, owner any, ids []uint) error {
	images, err := LoadImages(tx, ids)
	if err != nil || len(images) == 0 {
		return err
	}
	return MapDBError(tx.Model(owner).Association("Images").Append(images))
}

// DeleteImages detaches ids from the "Images" association of owner. The
// images themselves are kept.
func DeleteImages(tx *gorm.DB, owner any, ids []uint) error {
	ids = UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	stubs := make([]domain.Image, 0, len(ids))
	for _, id := range ids {
		stubs = append(stubs, domain.Image{BaseModel: domain.BaseModel{ID: id}})
	}
	return MapDBError(tx.Model(owner).Association("Images").Delete(stubs))
}
