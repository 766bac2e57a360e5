package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookstore-inventory/internal/domain/book"
	"github.com/xiebiao/bookstore-inventory/internal/infrastructure/persistence/mysql"
)

// DemoBooks 演示数据
var DemoBooks = []book.CreateParams{
	{Name: "The Midnight Library", Author: "Matt Haig", Quantity: 12, Price: 14.99},
	{Name: "The Night Circus", Author: "Erin Morgenstern", Quantity: 8, Price: 12.5},
	{Name: "Where the Crawdads Sing", Author: "Delia Owens", Quantity: 15, Price: 10.99},
}

// NewSeedCommand 写入演示数据
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "写入演示图书",
		Long: `通过领域服务写入演示图书(与HTTP接口相同的校验规则)。

库中已有图书时默认跳过,--force 强制追加。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			log, err := rootOpts.newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, cleanup, err := mysql.NewDB(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := book.NewService(mysql.NewBookRepository(db), mysql.NewTxManager(db))
			ctx := cmd.Context()

			existing, err := svc.ListBooks(ctx, book.ListFilter{})
			if err != nil {
				return err
			}
			if len(existing) > 0 && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "已有 %d 本图书,跳过(使用 --force 追加)\n", len(existing))
				return nil
			}

			for _, params := range DemoBooks {
				b, err := svc.CreateBook(ctx, params)
				if err != nil {
					return fmt.Errorf("写入 %q 失败: %w", params.Name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\t%.2f\n", b.ID, b.Name, b.Author, b.Quantity, b.Price)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "库中已有数据时仍然写入")
	return cmd
}
