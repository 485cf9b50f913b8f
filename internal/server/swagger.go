package server

//go:generate swag init -g internal/server/server.go -o docs/swagger

// @title DativeTop Server API
// @version 0.1
// @description Demo data service exposing the DativeTop registry of OLD instances.
// @contact.name DativeTop Maintainers
// @BasePath /
