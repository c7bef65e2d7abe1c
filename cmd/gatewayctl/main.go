package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/merchant-gateway/internal/adapters/audit"
	"github.com/kevin07696/merchant-gateway/internal/adapters/authnet"
	"github.com/kevin07696/merchant-gateway/internal/adapters/postgres"
	"github.com/kevin07696/merchant-gateway/internal/adapters/secrets"
	"github.com/kevin07696/merchant-gateway/internal/config"
	"github.com/kevin07696/merchant-gateway/internal/domain/models"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	"github.com/kevin07696/merchant-gateway/internal/services/gateway"
	"github.com/kevin07696/merchant-gateway/pkg/crypto"
	pkghttp "github.com/kevin07696/merchant-gateway/pkg/http"
	"github.com/kevin07696/merchant-gateway/pkg/resilience"
	"github.com/kevin07696/merchant-gateway/pkg/security"
)

// CLI runs one gateway action per invocation
type CLI struct {
	ctx      context.Context
	cfg      *config.Config
	logger   *security.ZapLoggerAdapter
	keys     ports.KeyProvider
	timeouts *resilience.TimeoutConfig
}

// request is the JSON accepted by the payment actions
type request struct {
	Amount        string                           `json:"amount"`
	Invoices      []models.InvoiceAllocation       `json:"invoices"`
	Card          *models.CardDetails              `json:"card"`
	BankAccount   *models.BankAccount              `json:"bank_account"`
	Contact       models.Contact                   `json:"contact"`
	Handle        models.StoredPaymentMethodHandle `json:"handle"`
	Reference     models.TransactionReference      `json:"reference"`
	ClientRefID   string                           `json:"client_reference_id"`
	ExistingAccts []string                         `json:"existing_account_references"`
}

func main() {
	var (
		action   = flag.String("action", "", "Action to perform")
		jsonFile = flag.String("json", "-", "JSON file with settings or request details, - for stdin")
		envFile  = flag.String("env", ".env", "Optional .env file")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Usage: gatewayctl -action=<action> [-json=<file>|-] < request.json")
		fmt.Println("Actions:")
		fmt.Println("  gen-key        - Generate a settings sealing key (local provider)")
		fmt.Println("  seal           - Validate and seal gateway settings from -json")
		fmt.Println("  show           - Print the sealed settings, masked")
		fmt.Println("  charge         - Charge a card or bank account")
		fmt.Println("  void           - Void a card, bank account or stored transaction")
		fmt.Println("  refund         - Refund a card, bank account or stored transaction")
		fmt.Println("  store          - Store a card or bank account with the processor")
		fmt.Println("  charge-stored  - Charge a stored payment method")
		fmt.Println("  remove         - Remove a stored payment method")
		os.Exit(1)
	}

	// Missing .env is fine; the environment may already be set
	_ = godotenv.Load(*envFile)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := security.NewZapLoggerForLevel(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	keys, err := secrets.NewKeyProvider(ctx, cfg.Keys, logger)
	if err != nil {
		logger.Zap().Fatal("Failed to initialize key provider", zap.Error(err))
	}

	cli := &CLI{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		keys:     keys,
		timeouts: resilience.NewTimeoutConfig(cfg.Transport.Timeout),
	}

	switch *action {
	case "gen-key":
		err = cli.generateKey()
	case "seal":
		err = cli.seal(*jsonFile)
	case "show":
		err = cli.show()
	case "charge", "void", "refund", "store", "charge-stored", "remove":
		err = cli.run(*action, *jsonFile)
	default:
		fmt.Printf("Unknown action: %s\n", *action)
		os.Exit(1)
	}
	if err != nil {
		logger.Zap().Fatal("Action failed", zap.String("action", *action), zap.Error(err))
	}
}

func (cli *CLI) generateKey() error {
	if cli.cfg.Keys.Provider != "local" {
		return fmt.Errorf("gen-key only writes to the local provider; store the key in %s yourself", cli.cfg.Keys.Provider)
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	provider := secrets.NewLocalKeyProvider(cli.cfg.Keys.LocalBasePath, cli.logger)
	if err := provider.WriteKey(cli.cfg.Keys.KeyPath, key); err != nil {
		return err
	}
	fmt.Printf("Key written to %s/%s\n", cli.cfg.Keys.LocalBasePath, cli.cfg.Keys.KeyPath)
	return nil
}

func (cli *CLI) sealer() (*crypto.Sealer, error) {
	ctx, cancel := cli.timeouts.KeyFetchContext(cli.ctx)
	defer cancel()

	key, err := cli.keys.GetKey(ctx, cli.cfg.Keys.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sealing key: %w", err)
	}
	return crypto.NewSealer(key)
}

func (cli *CLI) seal(jsonFile string) error {
	var input map[string]string
	if err := readJSON(jsonFile, &input); err != nil {
		return err
	}

	settings, verrs := config.ValidateGatewaySettings(input)
	if len(verrs) > 0 {
		if err := printJSON(map[string]any{"valid": false, "errors": verrs}); err != nil {
			return err
		}
		return verrs.Err()
	}

	sealer, err := cli.sealer()
	if err != nil {
		return err
	}
	records, err := config.SealGatewaySettings(settings, sealer)
	if err != nil {
		return err
	}
	if err := config.WriteSettingRecords(cli.cfg.Gateway.SettingsPath, records); err != nil {
		return err
	}

	fmt.Printf("Settings sealed to %s\n", cli.cfg.Gateway.SettingsPath)
	return nil
}

func (cli *CLI) show() error {
	gatewayConfig, err := cli.gatewayConfig()
	if err != nil {
		return err
	}
	fmt.Println(gatewayConfig.String())
	return nil
}

func (cli *CLI) gatewayConfig() (config.GatewayConfig, error) {
	sealer, err := cli.sealer()
	if err != nil {
		return config.GatewayConfig{}, err
	}
	return config.LoadGatewayConfig(cli.cfg.Gateway.SettingsPath, sealer)
}

func (cli *CLI) auditSink() (ports.AuditLogger, func(), error) {
	sinks := []ports.AuditLogger{audit.NewLoggerSink(cli.logger)}
	cleanup := func() {}

	if cli.cfg.Audit.DatabaseURL != "" {
		poolCfg := postgres.DefaultPoolConfig(cli.cfg.Audit.DatabaseURL)
		poolCfg.MaxConns = cli.cfg.Audit.MaxConns
		pool, err := postgres.NewPool(cli.ctx, poolCfg, cli.logger)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = pool.Close

		repo := postgres.NewAuditRepository(pool)
		if cli.cfg.Audit.EnsureTable {
			ctx, cancel := cli.timeouts.AuditWriteContext(cli.ctx)
			defer cancel()
			if err := repo.EnsureSchema(ctx); err != nil {
				return nil, cleanup, err
			}
		}
		sinks = append(sinks, repo)
	}
	return audit.NewFanout(sinks...), cleanup, nil
}

func (cli *CLI) run(action, jsonFile string) error {
	var req request
	if err := readJSON(jsonFile, &req); err != nil {
		return err
	}

	gatewayConfig, err := cli.gatewayConfig()
	if err != nil {
		return err
	}

	sink, cleanup, err := cli.auditSink()
	defer cleanup()
	if err != nil {
		return err
	}

	httpClient := pkghttp.NewRateLimitedClient(
		pkghttp.NewHTTPClient(pkghttp.GatewayClientConfig(), cli.cfg.Transport.Timeout),
		cli.cfg.Transport.RateLimit,
		cli.cfg.Transport.RateLimitBurst,
	)

	svc := gateway.NewService(
		gatewayConfig,
		authnet.DefaultEndpoints(gatewayConfig.DevMode),
		httpClient,
		sink,
		knownAccounts(req.ExistingAccts),
		cli.logger,
	)
	svc.SetCurrency(cli.cfg.Gateway.Currency)
	svc.SetTimeouts(cli.timeouts)

	ctx, cancel := cli.timeouts.ActionContext(cli.ctx)
	defer cancel()

	amount := decimal.Zero
	if req.Amount != "" {
		if amount, err = decimal.NewFromString(req.Amount); err != nil {
			return fmt.Errorf("invalid amount %q: %w", req.Amount, err)
		}
	}

	out, err := perform(ctx, svc, action, req, amount)
	if printErr := printJSON(out); printErr != nil {
		return printErr
	}
	return err
}

// paymentGateway is the part of gateway.Service the payment actions drive
type paymentGateway interface {
	Charge(ctx context.Context, method models.PaymentMethod, amount decimal.Decimal, invoices []models.InvoiceAllocation) (*models.TransactionResult, error)
	VoidCard(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error)
	RefundCard(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
	VoidBankAccount(ctx context.Context, ref models.TransactionReference) (*models.TransactionResult, error)
	RefundBankAccount(ctx context.Context, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
	VoidStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error)
	RefundStoredCard(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
	VoidStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference) (*models.TransactionResult, error)
	RefundStoredBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle, ref models.TransactionReference, amount decimal.Decimal) (*models.TransactionResult, error)
	StoreCard(ctx context.Context, card models.CardDetails, contact models.Contact, clientReferenceID string) (*models.StoredPaymentMethodHandle, error)
	StoreBankAccount(ctx context.Context, account models.BankAccount, contact models.Contact, clientReferenceID string) (*models.StoredPaymentMethodHandle, error)
	RemoveCard(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error)
	RemoveBankAccount(ctx context.Context, handle models.StoredPaymentMethodHandle) (*models.StoredPaymentMethodHandle, error)
}

var _ paymentGateway = (*gateway.Service)(nil)

// perform runs one payment action. void and refund follow the request's
// form: a handle selects the stored variant, an "acct:rtn" reference selects
// the bank account variant.
func perform(ctx context.Context, svc paymentGateway, action string, req request, amount decimal.Decimal) (any, error) {
	stored := req.Handle.AccountReferenceID != ""
	ach := isACHReference(req.Reference.ReferenceID)
	if stored {
		ach = req.Handle.MethodKind == models.MethodKindACH
	}

	switch action {
	case "charge":
		var method models.PaymentMethod
		switch {
		case req.Card != nil:
			method = *req.Card
		case req.BankAccount != nil:
			method = *req.BankAccount
		}
		return svc.Charge(ctx, method, amount, req.Invoices)
	case "void":
		switch {
		case stored && ach:
			return svc.VoidStoredBankAccount(ctx, req.Handle, req.Reference)
		case stored:
			return svc.VoidStoredCard(ctx, req.Handle, req.Reference)
		case ach:
			return svc.VoidBankAccount(ctx, req.Reference)
		default:
			return svc.VoidCard(ctx, req.Reference)
		}
	case "refund":
		switch {
		case stored && ach:
			return svc.RefundStoredBankAccount(ctx, req.Handle, req.Reference, amount)
		case stored:
			return svc.RefundStoredCard(ctx, req.Handle, req.Reference, amount)
		case ach:
			return svc.RefundBankAccount(ctx, req.Reference, amount)
		default:
			return svc.RefundCard(ctx, req.Reference, amount)
		}
	case "store":
		switch {
		case req.BankAccount != nil:
			return svc.StoreBankAccount(ctx, *req.BankAccount, req.Contact, req.ClientRefID)
		case req.Card != nil:
			return svc.StoreCard(ctx, *req.Card, req.Contact, req.ClientRefID)
		default:
			return nil, fmt.Errorf("store needs a card or bank_account")
		}
	case "charge-stored":
		return svc.Charge(ctx, req.Handle, amount, req.Invoices)
	case "remove":
		if req.Handle.MethodKind == models.MethodKindACH {
			return svc.RemoveBankAccount(ctx, req.Handle)
		}
		return svc.RemoveCard(ctx, req.Handle)
	}
	return nil, fmt.Errorf("unknown payment action %q", action)
}

// isACHReference reports whether reference has the bank account form
func isACHReference(reference string) bool {
	_, _, err := models.ParseACHGatewayReference(reference)
	return err == nil
}

// knownAccounts is a fixed StoredAccountDirectory fed from the request file
type knownAccounts []string

func (k knownAccounts) ExistingAccountReferences(ctx context.Context, contact models.Contact, kind models.MethodKind) ([]string, error) {
	return k, nil
}

// readJSON decodes the file at path into v. "-" reads stdin.
func readJSON(path string, v any) error {
	return decodeJSON(path, os.Stdin, v)
}

func decodeJSON(path string, stdin io.Reader, v any) error {
	var (
		data []byte
		err  error
	)
	switch strings.TrimSpace(path) {
	case "":
		return fmt.Errorf("-json is required for this action")
	case "-":
		path = "stdin"
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
