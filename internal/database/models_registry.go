package database

import "campuswall/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.College{},
		&models.Session{},
		&models.Confession{},
		&models.Comment{},
		&models.Like{},
		&models.ChatRoom{},
		&models.ChatMessage{},
		&models.DirectMessage{},
		&models.UserTokens{},
		&models.MarketplaceItem{},
		&models.TokenTransaction{},
		&models.VipPurchase{},
		&models.VipMembership{},
	}
}
