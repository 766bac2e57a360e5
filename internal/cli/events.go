package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookstore-inventory/pkg/mq"
)

// EventsOptions events tail参数
type EventsOptions struct {
	*RootOptions
	RoutingKeys []string
	Queue       string
}

// NewEventsCommand 库存事件相关命令
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "库存事件",
	}
	cmd.AddCommand(newEventsTailCommand(rootOpts))
	return cmd
}

func newEventsTailCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "订阅并打印库存事件,Ctrl+C退出",
		Long: `在 mq.exchange 上绑定临时队列并逐条打印事件。

Examples:
  bookctl events tail
  bookctl events tail --key book.sold_out
  bookctl events tail --queue inventory.audit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsTail(opts, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.RoutingKeys, "key", []string{"book.#"}, "routing key,支持通配符,可重复")
	cmd.Flags().StringVar(&opts.Queue, "queue", "", "持久队列名,为空时使用临时队列")

	return cmd
}

func runEventsTail(opts *EventsOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	log, err := opts.newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, mq.ConsumerOptions{
		Queue:       opts.Queue,
		RoutingKeys: opts.RoutingKeys,
		Transient:   opts.Queue == "",
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = consumer.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	return consumer.Consume(ctx, func(msg mq.Message) error {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		_, err := fmt.Fprintf(out, "%s\t%s\t%s\n", ts.Format(time.RFC3339), msg.RoutingKey, msg.Body)
		return err
	})
}
