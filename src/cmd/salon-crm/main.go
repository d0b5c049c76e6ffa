// salon-crm 沙龍報到與忠誠度服務
//
// 用法：
//
//	salon-crm [serve]                               啟動 HTTP 服務
//	salon-crm staff-token -salon ID -staff ID ...   簽發員工 JWT（開發與營運工具）
//	salon-crm watch -server URL -jwt JWT -token T   在終端機等待顧客掃碼
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	checkinapp "github.com/jackyeh168/salon_crm/src/internal/application/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/config"
	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/interfaces/httpapi"
)

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		newApp().Run()
	case "staff-token":
		os.Exit(runStaffToken(args))
	case "watch":
		os.Exit(runWatch(args))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (serve | staff-token | watch)\n", cmd)
		os.Exit(2)
	}
}

func runStaffToken(args []string) int {
	fs := flag.NewFlagSet("staff-token", flag.ContinueOnError)
	salonID := fs.String("salon", "", "salon id")
	staffID := fs.String("staff", "", "staff id")
	role := fs.String("role", httpapi.RoleStaff, "staff | manager | owner")
	ttl := fs.Duration("ttl", 12*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *salonID == "" || *staffID == "" {
		fmt.Fprintln(os.Stderr, "-salon and -staff are required")
		return 2
	}

	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	auth := httpapi.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, nil, nil)
	token, err := auth.Sign(httpapi.Staff{ID: *staffID, SalonID: *salonID, Role: *role}, time.Now(), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(token)
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	server := fs.String("server", "http://localhost:8080", "salon-crm base url")
	bearer := fs.String("jwt", os.Getenv("SALON_STAFF_JWT"), "staff jwt")
	token := fs.String("token", "", "visit token to watch")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *token == "" {
		fmt.Fprintln(os.Stderr, "-token is required")
		return 2
	}

	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := httpapi.NewStatusClient(*server, *bearer, nil)
	initial, err := client.FetchStatus(ctx, *token)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	watcher := checkinapp.NewConfirmationWatcher(client, shared.SystemClock{}, checkinapp.WatcherConfig{
		PollInterval:   cfg.Checkin.PollInterval,
		TickInterval:   cfg.Checkin.TickInterval,
		ConfirmedGrace: cfg.Checkin.ConfirmedGrace,
	}, nil)

	state, err := watcher.Watch(ctx, *token, initial.ExpiresAt, func(u checkinapp.WatchUpdate) {
		switch {
		case u.Dismissed:
			fmt.Println("done")
		case u.State == checkin.TokenStateWaiting:
			fmt.Printf("\rwaiting… %2ds ", int(u.Remaining/time.Second))
		default:
			fmt.Printf("\n%s\n", u.State)
		}
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if state != checkin.TokenStateConfirmed {
		return 3
	}
	return 0
}
