package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rollbackgame/internal/config"
	"rollbackgame/internal/hostserver"
	"rollbackgame/internal/telemetry"
)

func main() {
	log.Println("🎮 ================================")
	log.Println("🎮  ROLLBACK GAME - HOST")
	log.Println("🎮 ================================")

	hostCfg := config.HostFromEnv()
	log.Printf("🎮 Config: listen=:%d admin=:%d rate=%.0f/s burst=%d",
		hostCfg.ListenPort, hostCfg.AdminPort, hostCfg.RateLimitRPS, hostCfg.RateLimitBurst)

	debugCfg := telemetry.DefaultDebugServerConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		debugCfg.Enabled = false
	}
	telemetry.StartDebugServer(debugCfg, log.Printf)

	host := hostserver.NewHost(hostCfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down...")
		cancel()
	}()

	log.Println("✅ Host ready! Press Ctrl+C to stop.")
	if err := host.Run(ctx); err != nil {
		log.Fatalf("host: %v", err)
	}
	log.Println("👋 Goodbye!")
}
