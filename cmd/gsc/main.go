package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gsc-go/internal/app"
	"gsc-go/internal/config"
	"gsc-go/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "AddGame", "RecordSave").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// parseFileHashes converts REL=HASH command line arguments into a manifest.
func parseFileHashes(args []string) ([]model.FileHash, error) {
	files := make([]model.FileHash, 0, len(args))
	for _, arg := range args {
		rel, hash, ok := strings.Cut(arg, "=")
		if !ok || rel == "" || hash == "" {
			return nil, fmt.Errorf("invalid file entry %q, want REL_PATH=HASH", arg)
		}
		files = append(files, model.FileHash{RelativePath: rel, Hash: hash})
	}
	return files, nil
}

func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(passphrase), nil
}

func printGame(g *model.GameMetadata) {
	appID := "-"
	if g.SteamAppID != nil {
		appID = *g.SteamAppID
	}
	aliases := ""
	if len(g.KnownNames) > 0 {
		aliases = strings.Join(g.KnownNames, ", ")
	}
	fmt.Printf("#%d  %-30s  steam:%-10s  %s\n", g.ID, g.DefaultName, appID, aliases)
}

var rootCmd = &cobra.Command{
	Use:   "gsc",
	Short: "Game save catalog",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new host ID
		hostID := uuid.New().String()

		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:  %s\n", cfg.HostID)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.DataDir, cfg.Database.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:    %s\n", v.Type)
		}
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog location and schema state",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.Status()
		if err != nil {
			return fmt.Errorf("catalog at %s: %w", path, err)
		}

		fmt.Printf("Catalog: %s\n", path)
		fmt.Println("Schema:  up to date")
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupEncryption")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}

		if err := a.SetupEncryption(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// game command
var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage games",
}

var gameAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steamAppID, _ := cmd.Flags().GetString("steam-appid")
		aliases, _ := cmd.Flags().GetStringArray("alias")

		a, err := newApp("AddGame")
		if err != nil {
			return err
		}
		defer a.Close()

		game, err := a.AddGame(args[0], steamAppID, aliases)
		if err != nil {
			a.MarkFailed()
			return fmt.Errorf("adding game: %w", err)
		}

		fmt.Printf("Added game #%d: %s\n", game.ID, game.DefaultName)
		return nil
	},
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all games",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListGames")
		if err != nil {
			return err
		}
		defer a.Close()

		games, err := a.ListGames()
		if err != nil {
			return err
		}

		if len(games) == 0 {
			fmt.Println("No games in catalog.")
			return nil
		}

		for i := range games {
			printGame(&games[i])
		}
		return nil
	},
}

var gameFindCmd = &cobra.Command{
	Use:   "find NAME",
	Short: "Find games by display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FindGames")
		if err != nil {
			return err
		}
		defer a.Close()

		games, err := a.FindGames(args[0])
		if err != nil {
			return err
		}

		if len(games) == 0 {
			fmt.Println("No matching games.")
			return nil
		}

		for i := range games {
			printGame(&games[i])
		}
		return nil
	},
}

var gameShowCmd = &cobra.Command{
	Use:   "show GAME_ID",
	Short: "Show one game with its paths and executables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("GetGame")
		if err != nil {
			return err
		}
		defer a.Close()

		game, err := a.GetGame(id)
		if err != nil {
			return err
		}
		if game == nil {
			fmt.Printf("No game with id %d.\n", id)
			return nil
		}

		printGame(game)

		paths, err := a.SavePaths(id)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("  path #%d  %-7s  %s\n", p.ID, p.OS.Code(), p.Path)
		}

		executables, err := a.Executables(id)
		if err != nil {
			return err
		}
		for _, e := range executables {
			fmt.Printf("  exe  #%d  %-7s  %s\n", e.ID, e.OS.Code(), e.Executable)
		}
		return nil
	},
}

// path command
var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Manage save paths",
}

var pathAddCmd = &cobra.Command{
	Use:   "add GAME_ID PATH",
	Short: "Register a save path for a game",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		osCode, _ := cmd.Flags().GetString("os")

		gameID, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("AddSavePath")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.AddSavePath(gameID, args[1], osCode)
		if err != nil {
			a.MarkFailed()
			return fmt.Errorf("adding save path: %w", err)
		}

		fmt.Printf("Added path #%d: %s (%s)\n", path.ID, path.Path, path.OS.Code())
		return nil
	},
}

var pathListCmd = &cobra.Command{
	Use:   "list GAME_ID",
	Short: "List save paths for a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		osCode, _ := cmd.Flags().GetString("os")

		gameID, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("GetSavePaths")
		if err != nil {
			return err
		}
		defer a.Close()

		if osCode != "" {
			paths, err := a.SavePathsForOS(gameID, osCode)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		}

		paths, err := a.SavePaths(gameID)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("#%d  %-7s  %s\n", p.ID, p.OS.Code(), p.Path)
		}
		return nil
	},
}

// exe command
var exeCmd = &cobra.Command{
	Use:   "exe",
	Short: "Manage game executables",
}

var exeAddCmd = &cobra.Command{
	Use:   "add GAME_ID EXECUTABLE",
	Short: "Register an executable for a game",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		osCode, _ := cmd.Flags().GetString("os")

		gameID, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("AddExecutable")
		if err != nil {
			return err
		}
		defer a.Close()

		exe, err := a.AddExecutable(gameID, args[1], osCode)
		if err != nil {
			a.MarkFailed()
			return fmt.Errorf("adding executable: %w", err)
		}

		fmt.Printf("Added executable #%d: %s (%s)\n", exe.ID, exe.Executable, exe.OS.Code())
		return nil
	},
}

var exeListCmd = &cobra.Command{
	Use:   "list GAME_ID",
	Short: "List executables for a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		osCode, _ := cmd.Flags().GetString("os")

		gameID, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("GetExecutables")
		if err != nil {
			return err
		}
		defer a.Close()

		if osCode != "" {
			executables, err := a.ExecutablesForOS(gameID, osCode)
			if err != nil {
				return err
			}
			for _, e := range executables {
				fmt.Println(e)
			}
			return nil
		}

		executables, err := a.Executables(gameID)
		if err != nil {
			return err
		}
		for _, e := range executables {
			fmt.Printf("#%d  %-7s  %s\n", e.ID, e.OS.Code(), e.Executable)
		}
		return nil
	},
}

// save command
var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Manage save snapshots",
}

var saveRecordCmd = &cobra.Command{
	Use:   "record PATH_ID [REL_PATH=HASH ...]",
	Short: "Record a save snapshot for a path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		saveUUID, _ := cmd.Flags().GetString("uuid")

		pathID, err := parseID(args[0])
		if err != nil {
			return err
		}

		files, err := parseFileHashes(args[1:])
		if err != nil {
			return err
		}

		a, err := newApp("RecordSave")
		if err != nil {
			return err
		}
		defer a.Close()

		recorded, err := a.RecordSave(saveUUID, pathID, files)
		if err != nil {
			a.MarkFailed()
			return fmt.Errorf("recording save: %w", err)
		}

		fmt.Printf("Recorded save %s with %d file(s)\n", recorded, len(files))
		return nil
	},
}

var saveLogCmd = &cobra.Command{
	Use:   "log PATH_ID",
	Short: "View save history for a path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pathID, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("GetSaveHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		refs, err := a.SaveHistory(pathID)
		if err != nil {
			return err
		}

		if len(refs) == 0 {
			fmt.Println("No saves recorded.")
			return nil
		}

		for _, ref := range refs {
			fmt.Printf("%s  %s  %d file(s)\n",
				ref.UUID,
				ref.Time.Format("2006-01-02 15:04:05"),
				len(ref.FilesHash),
			)
			for _, fh := range ref.FilesHash {
				fmt.Printf("  %s  %s\n", fh.Hash, fh.RelativePath)
			}
		}
		return nil
	},
}

// vault command
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the snapshot vault",
}

var vaultValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify vault access",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ValidateVault")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ValidateVault(); err != nil {
			return fmt.Errorf("vault validation failed: %w", err)
		}

		fmt.Println("Vault is reachable.")
		return nil
	},
}

var vaultFetchCmd = &cobra.Command{
	Use:   "fetch DEST",
	Short: "Download and decrypt the latest catalog snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("FetchSnapshot")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}

		if err := a.FetchSnapshot(args[0], passphrase); err != nil {
			return fmt.Errorf("fetching snapshot: %w", err)
		}

		fmt.Printf("Snapshot written to %s\n", args[0])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// game subcommands
	gameCmd.AddCommand(gameAddCmd)
	gameAddCmd.Flags().String("steam-appid", "", "Steam application ID")
	gameAddCmd.Flags().StringArray("alias", nil, "Alternative name (repeatable)")
	gameCmd.AddCommand(gameListCmd)
	gameCmd.AddCommand(gameFindCmd)
	gameCmd.AddCommand(gameShowCmd)

	// path subcommands
	pathCmd.AddCommand(pathAddCmd)
	pathAddCmd.Flags().String("os", "linux", "Operating system (windows, linux, macos)")
	pathCmd.AddCommand(pathListCmd)
	pathListCmd.Flags().String("os", "", "Filter by operating system")

	// exe subcommands
	exeCmd.AddCommand(exeAddCmd)
	exeAddCmd.Flags().String("os", "linux", "Operating system (windows, linux, macos)")
	exeCmd.AddCommand(exeListCmd)
	exeListCmd.Flags().String("os", "", "Filter by operating system")

	// save subcommands
	saveCmd.AddCommand(saveRecordCmd)
	saveRecordCmd.Flags().String("uuid", "", "Save identifier (generated when omitted)")
	saveCmd.AddCommand(saveLogCmd)

	// vault subcommands
	vaultCmd.AddCommand(vaultValidateCmd)
	vaultCmd.AddCommand(vaultFetchCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(exeCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(vaultCmd)
}
