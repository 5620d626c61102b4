package server

import "embed"

//go:embed assets/*
var embeddedAssets embed.FS
