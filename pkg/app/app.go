package app

import (
	"io"
	"log/slog"

	"github.com/amirasaad/currency-converter/pkg/config"
	"github.com/amirasaad/currency-converter/pkg/provider"
	"github.com/amirasaad/currency-converter/pkg/service/conversion"
	"github.com/amirasaad/currency-converter/pkg/service/history"
	"github.com/amirasaad/currency-converter/pkg/store"
)

// Deps contains the infrastructure the services are built on
type Deps struct {
	Rates  provider.Rates
	Store  store.KV
	Logger *slog.Logger
}

// App bundles the services the front ends drive.
type App struct {
	Deps       *Deps
	Config     *config.App
	Conversion *conversion.Controller
	History    *history.Service
}

// New builds the services on top of deps.
func New(deps *Deps, cfg *config.App) *App {
	return &App{
		Deps:       deps,
		Config:     cfg,
		Conversion: conversion.New(deps.Rates, deps.Store, deps.Logger),
		History:    history.New(deps.Store, deps.Logger),
	}
}

// Close tears down the controller and releases the store.
func (a *App) Close() error {
	a.Conversion.Close()
	if c, ok := a.Deps.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
