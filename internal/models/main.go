package models

// ModelRegistry lists every model subject to gorm AutoMigrate.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
