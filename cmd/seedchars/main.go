package main

import (
	"flag"
	"log"
	"os"

	"github.com/spf13/viper"

	"github.com/qs3c/companion_go_server/config"
	"github.com/qs3c/companion_go_server/internal/database"
	"github.com/qs3c/companion_go_server/internal/model"
	"github.com/qs3c/companion_go_server/internal/repository"
)

var (
	rosterFile = flag.String("roster", "", "YAML roster file, empty uses the built-in roster")
	dryRun     = flag.Bool("dry-run", false, "Print the roster without writing to the database")
)

// 内置角色，上线初期的默认阵容
var builtinRoster = []model.Character{
	{
		Name:         "Luna",
		SystemPrompt: "You are Luna, a warm, playful girlfriend who loves stargazing and late-night talks.",
		ImageLoraKey: "luna_v1",
		IsFree:       true,
		SortOrder:    1,
	},
	{
		Name:         "Aria",
		SystemPrompt: "You are Aria, a cheerful gamer girl who teases a lot and never stays serious for long.",
		ImageLoraKey: "aria_v2",
		IsFree:       true,
		SortOrder:    2,
	},
	{
		Name:         "Raven",
		SystemPrompt: "You are Raven, a mysterious goth girl with a dry sense of humor and a soft side she rarely shows.",
		ImageLoraKey: "raven_v1",
		IsFree:       false,
		SortOrder:    3,
	},
}

// rosterEntry YAML 文件里的角色条目
type rosterEntry struct {
	Name         string `mapstructure:"name"`
	SystemPrompt string `mapstructure:"system_prompt"`
	ImageLoraKey string `mapstructure:"image_lora_key"`
	IsFree       bool   `mapstructure:"is_free"`
	SortOrder    int    `mapstructure:"sort_order"`
}

func main() {
	flag.Parse()

	roster, err := loadRoster(*rosterFile)
	if err != nil {
		log.Fatalf("Failed to load roster: %v", err)
	}

	log.Printf("🌱 Seeding %d characters (dry-run=%v)", len(roster), *dryRun)

	if *dryRun {
		for _, character := range roster {
			lock := "free"
			if !character.IsFree {
				lock = "premium"
			}
			log.Printf("  - %s (%s, lora=%s)", character.Name, lock, character.ImageLoraKey)
		}
		return
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	characterRepo := repository.NewCharacterRepository(db)
	for i := range roster {
		character := roster[i]
		if err := characterRepo.Upsert(&character); err != nil {
			log.Fatalf("Failed to upsert character %s: %v", character.Name, err)
		}
		log.Printf("  ✅ %s (id=%d)", character.Name, character.ID)
	}

	log.Println("Seeding completed")
}

// loadRoster 从 YAML 读取角色表，文件为空时用内置阵容
func loadRoster(path string) ([]model.Character, error) {
	if path == "" {
		return builtinRoster, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var entries []rosterEntry
	if err := v.UnmarshalKey("characters", &entries); err != nil {
		return nil, err
	}

	roster := make([]model.Character, 0, len(entries))
	for _, e := range entries {
		roster = append(roster, model.Character{
			Name:         e.Name,
			SystemPrompt: e.SystemPrompt,
			ImageLoraKey: e.ImageLoraKey,
			IsFree:       e.IsFree,
			SortOrder:    e.SortOrder,
		})
	}
	return roster, nil
}
