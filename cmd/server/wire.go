//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"classlive/internal/app"
	"classlive/internal/config"
	"classlive/internal/http"
	"classlive/internal/http/controller"
	"classlive/internal/logging"
	"classlive/internal/queue/rabbitmq"
	"classlive/internal/service/notify"
	"classlive/internal/signaling"
	"classlive/internal/sse"
	"classlive/internal/store"
)

func InitializeApp() (*app.App, error) {
	wire.Build(
		config.New,
		logging.New,
		store.NewStore,
		store.NewClassroomDirectory,
		wire.Bind(new(signaling.MeetingStore), new(store.ClassroomDirectory)),
		wire.Bind(new(signaling.MembershipGuard), new(store.ClassroomDirectory)),
		wire.Bind(new(signaling.UserDirectory), new(store.ClassroomDirectory)),
		signaling.NewRegistry,
		signaling.NewHub,
		sse.NewHub,
		notify.NewService,
		rabbitmq.NewPublisher,
		notify.NewDispatcher,
		controller.NewHandler,
		http.NewRouter,
		app.NewApp,
	)
	return &app.App{}, nil
}
