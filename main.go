package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ragtime/config"
	"ragtime/database"
	"ragtime/logger"
	"ragtime/web"
	"ragtime/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitFromConfig()
	if err != nil {
		log.Fatal(err)
	}

	server := web.NewServer()
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			return
		}
	}
}

// migrateDb applies the schema, refreshes the canonical roles and inserts
// any missing self-follow edges.
func migrateDb() {
	err := database.InitFromConfig()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Start migrating database...")

	roleService := service.RoleService{}
	if err := roleService.SeedRoles(); err != nil {
		fmt.Println("seed roles failed:", err)
		return
	}
	userService := service.UserService{}
	n, err := userService.BackfillSelfFollows()
	if err != nil {
		fmt.Println("backfill self follows failed:", err)
		return
	}
	fmt.Printf("Migration done! (%d self-follow edges added)\n", n)
}

// updateSetting persists overrides into the .env file next to the binary.
func updateSetting(adminEmail string) {
	env, err := godotenv.Read()
	if err != nil {
		env = map[string]string{}
	}
	if adminEmail != "" {
		env["RAGTIME_ADMIN"] = adminEmail
	}
	if err := godotenv.Write(env, ".env"); err != nil {
		fmt.Println("update setting failed:", err)
		return
	}
	fmt.Println("update setting success")
}

func showSetting() {
	fmt.Println("current settings as follows:")
	fmt.Println("listen:", config.GetListen())
	fmt.Println("port:", config.GetPort())
	fmt.Println("basePath:", config.GetBasePath())
	fmt.Println("database:", config.GetDatabaseConfig().Type)
	fmt.Println("adminEmail:", config.GetAdminEmail())
	fmt.Println("externalURL:", config.GetExternalURL())
}

func main() {
	var rootCmd = &cobra.Command{
		Use: "ragtime",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and seed the canonical roles",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			adminEmail, _ := cmd.Flags().GetString("admin-email")
			updateSetting(adminEmail)
		},
	}
	updateCmd.Flags().String("admin-email", "", "email granted the Administrator role")

	settingCmd.AddCommand(showCmd, updateCmd)
	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("execute failed:", err)
		os.Exit(1)
	}
}
