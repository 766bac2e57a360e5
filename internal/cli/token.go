package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/bookstore-inventory/pkg/jwt"
)

// TokenOptions token命令参数
type TokenOptions struct {
	*RootOptions
	Subject string
	Role    string
	Expire  time.Duration
	JSON    bool
}

// tokenResult --json输出
type tokenResult struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenCommand 签发写接口使用的Token
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发管理员Token",
		Long: `使用配置中的 auth.secret / auth.issuer 签发HS256 Token。

auth.enabled=true 时,POST/PUT/PATCH/DELETE /api/v1/books 需要携带:
  Authorization: Bearer <token>

Examples:
  bookctl token --subject ops
  bookctl token --expire 24h --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "subject", "admin", "操作者标识,写入sub")
	cmd.Flags().StringVar(&opts.Role, "role", jwt.RoleAdmin, "角色,只有admin可以调用写接口")
	cmd.Flags().DurationVar(&opts.Expire, "expire", 0, "有效期,0表示使用auth.token_expire")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "以JSON格式输出")

	return cmd
}

func runToken(opts *TokenOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	expire := cfg.Auth.TokenExpire
	if opts.Expire > 0 {
		expire = opts.Expire
	}

	manager := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, expire)
	token, expiresAt, err := manager.GenerateToken(opts.Subject, opts.Role)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(tokenResult{
			Token:     token,
			Subject:   opts.Subject,
			Role:      opts.Role,
			ExpiresAt: expiresAt.UTC(),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
