package robotorder

import (
	"fmt"
	"os"
	"path/filepath"
	"robotorder/lib/configutil"
)

// Selectors locate the storefront's elements. They may be CSS or XPath,
// except Head which must be CSS. Body is a format string taking the order's
// body value.
type Selectors struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	LoginButton  string `json:"login_button"`
	LoggedIn     string `json:"logged_in"`
	ModalOK      string `json:"modal_ok"`
	Head         string `json:"head"`
	Body         string `json:"body"`
	Legs         string `json:"legs"`
	Address      string `json:"address"`
	Preview      string `json:"preview"`
	PreviewImage string `json:"preview_image"`
	Submit       string `json:"submit"`
	Receipt      string `json:"receipt"`
	OrderAnother string `json:"order_another"`
}

type Config struct {
	StoreUrl     string `json:"store_url"`
	OrderPageUrl string `json:"order_page_url"`
	OrdersUrl    string `json:"orders_url"`

	// local copy of the order file, overwritten on every run
	OrdersFile string `json:"orders_file"`

	Username   string `json:"username"`
	Password   string `json:"password"`
	ReceiptDir string `json:"receipt_dir"`
	ArchiveDir string `json:"archive_dir"`

	// submission attempts per order before the run is aborted
	MaxAttempts int `json:"max_attempts"`

	Headed    bool      `json:"headed"`
	Selectors Selectors `json:"selectors"`

	// the order file is fetched through a plain transport when set
	DisableCloudflareBypass bool `json:"disable_cloudflare_bypass"`
}

func DefaultConfig() Config {
	return Config{
		StoreUrl:     "https://robotsparebinindustries.com/",
		OrderPageUrl: "https://robotsparebinindustries.com/#/robot-order",
		OrdersUrl:    "https://robotsparebinindustries.com/orders.csv",
		OrdersFile:   "orders.csv",
		Username:     "maria",
		Password:     "thoushallnotpass",
		ReceiptDir:   filepath.Join("output", "receipt"),
		ArchiveDir:   ".",
		MaxAttempts:  10,
		Selectors: Selectors{
			Username:     "#username",
			Password:     "#password",
			LoginButton:  "//button[text()='Log in']",
			LoggedIn:     "#logout",
			ModalOK:      "//button[text()='OK']",
			Head:         "#head",
			Body:         "#id-body-%s",
			Legs:         `input[placeholder="Enter the part number for the legs"]`,
			Address:      "#address",
			Preview:      "#preview",
			PreviewImage: "#robot-preview-image",
			Submit:       "#order",
			Receipt:      "#receipt",
			OrderAnother: "#order-another",
		},
	}
}

// LoadConfig reads `path` (json5, with an optional .local override) and
// fills everything it leaves out from DefaultConfig. A missing file is not
// an error.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err = configutil.WithDefaults(cfg, DefaultConfig())
	if err != nil {
		return Config{}, err
	}
	if cfg.MaxAttempts < 1 {
		return Config{}, fmt.Errorf("max_attempts must be at least 1, got %d", cfg.MaxAttempts)
	}
	return cfg, nil
}

func (c Config) PreviewPath(orderNumber string) string {
	return filepath.Join(c.ReceiptDir, fmt.Sprintf("robot_preview_%s.png", orderNumber))
}

func (c Config) ReceiptPath(orderNumber string) string {
	return filepath.Join(c.ReceiptDir, fmt.Sprintf("%s.pdf", orderNumber))
}

func (s Selectors) BodyOption(body string) string {
	return fmt.Sprintf(s.Body, body)
}
