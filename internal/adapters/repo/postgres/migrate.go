package postgres

import (
	"gorm.io/gorm"

	"github.com/bufaso/shopbot/internal/domain"
)

// MigrateAndSeed prepares the mirror store and seeds a demo catalog when it
// is empty, so a fresh local deploy has something to browse.
func MigrateAndSeed(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Category{}, &domain.Product{}, &domain.Order{}, &domain.OrderLine{},
	); err != nil {
		return err
	}

	var count int64
	if err := db.Model(&domain.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	seedCatalog(db)
	return nil
}

func seedCatalog(db *gorm.DB) {
	cats := []domain.Category{
		{ID: "1", Name: "Пицца"},
		{ID: "2", Name: "Напитки"},
	}
	for _, c := range cats {
		db.Create(&c)
	}
	prods := []domain.Product{
		{ID: "1", CategoryID: "1", Name: "Маргарита", Description: "Томаты, моцарелла", Price: "450", Unit: "30 см",
			Extra1: domain.PriceSlot{Price: "650", Unit: "40 см"}},
		{ID: "2", CategoryID: "1", Name: "Пепперони", Description: "Пепперони, сыр", Price: "550", Unit: "30 см",
			Extra1: domain.PriceSlot{Price: "750", Unit: "40 см"}},
		{ID: "3", CategoryID: "2", Name: "Морс", Description: "Клюквенный", Price: "120", Unit: "0.5 л"},
	}
	for _, p := range prods {
		db.Create(&p)
	}
}
