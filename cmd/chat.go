package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/messaging"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Send a message between a business and an influencer and wait for the reply",
	Run: func(cmd *cobra.Command, _ []string) {
		chat(cmd)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("from", "", "sender user id")
	chatCmd.Flags().String("to", "", "receiver user id")
	chatCmd.Flags().StringP("message", "m", "", "message content")
	chatCmd.Flags().Duration("wait", 5*time.Second, "how long to wait for the automated reply")

	chatCmd.MarkFlagRequired("from")
	chatCmd.MarkFlagRequired("to")
	chatCmd.MarkFlagRequired("message")
}

func chat(cmd *cobra.Command) {
	log, config, dir := bootstrap()

	from := cmd.Flag("from").Value.String()
	to := cmd.Flag("to").Value.String()
	content := cmd.Flag("message").Value.String()
	wait, _ := cmd.Flags().GetDuration("wait")

	service := messaging.NewService(dir, log, nil)

	service.Typing.Subscribe(func(e messaging.TypingEvent) {
		log.Info("typing status", zap.String("user_id", e.UserID), zap.Bool("typing", e.Typing))
	})
	service.Presence.Subscribe(func(e messaging.PresenceEvent) {
		log.Debug("online status", zap.String("user_id", e.UserID), zap.Bool("online", e.Online))
	})

	replies := make(chan messaging.Message, 1)
	service.Messages.Subscribe(func(m messaging.Message) {
		if m.Auto && m.ReceiverID == from {
			select {
			case replies <- m:
			default:
			}
		}
	})

	responder := messaging.NewAutoResponder(service, config.Messaging.ReplyDelay, config.Messaging.TypingDelay, log)
	responder.Start()
	defer responder.Stop()

	presence := messaging.NewPresence(service, config.Messaging.PresenceInterval, log)
	if err := presence.Start(); err != nil {
		log.Fatal("starting presence simulation", zap.Error(err))
	}
	defer presence.Stop()

	conversation, err := service.ConversationBetween(from, to)
	if err != nil {
		log.Fatal("finding conversation", zap.Error(err), zap.String("from", from), zap.String("to", to))
	}

	sent, err := service.Send(conversation.ID, from, content)
	if err != nil {
		log.Fatal("sending message", zap.Error(err), zap.String("conversation_id", conversation.ID))
	}

	log.Info("message sent", zap.String("conversation_id", conversation.ID), zap.String("message_id", sent.ID))

	select {
	case reply := <-replies:
		log.Info("reply received", zap.String("message_id", reply.ID), zap.String("sender_id", reply.SenderID))
	case <-time.After(wait):
		log.Warn("no reply received", zap.Duration("waited", wait))
	}

	if err := service.MarkRead(conversation.ID, from); err != nil {
		log.Fatal("marking conversation as read", zap.Error(err))
	}

	history, err := service.History(conversation.ID)
	if err != nil {
		log.Fatal("reading conversation", zap.Error(err))
	}

	if err := printJSON(cmd.OutOrStdout(), history); err != nil {
		log.Fatal("printing conversation", zap.Error(err))
	}
}
