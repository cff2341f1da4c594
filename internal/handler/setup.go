package handler

import (
	"sync"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-agegate/internal/config"
	"tg-agegate/internal/engine"
	"tg-agegate/internal/gateway"
	"tg-agegate/internal/service"
)

var (
	globalConfig *config.Config
	eng          *engine.Engine

	handlersWG sync.WaitGroup
)

func Initialize(cfg *config.Config) {
	globalConfig = cfg
	service.Initialize(cfg)
}

// WaitForHandlers blocks until all in-flight update handlers finished, used
// during shutdown so a decision runs to completion.
func WaitForHandlers() {
	handlersWG.Wait()
}

// SetupMessageHandlers configures all bot message and update handlers
func SetupMessageHandlers(bh *th.BotHandler, bot *telego.Bot) {
	service.InitRepositories()

	eng = engine.NewFromServices(gateway.NewTelegramGateway(bot))

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		handlersWG.Add(1)
		defer handlersWG.Done()

		ok, err := RegisterCommands(ctx, bot, message)
		if ok {
			return err
		}
		return nil
	})

	bh.Handle(func(ctx *th.Context, update telego.Update) error {
		handlersWG.Add(1)
		defer handlersWG.Done()

		return handleChatMemberUpdate(ctx, bot, update)
	}, th.AnyChatMember())

	bh.Handle(func(ctx *th.Context, update telego.Update) error {
		handlersWG.Add(1)
		defer handlersWG.Done()

		return handleMyChatMemberUpdate(ctx, update)
	}, th.AnyMyChatMember())

	bh.HandleCallbackQuery(func(ctx *th.Context, query telego.CallbackQuery) error {
		handlersWG.Add(1)
		defer handlersWG.Done()

		return HandleCallbackQuery(ctx, bot, query)
	})
}
