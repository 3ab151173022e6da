package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "populate":
		populateCmd(apiURL, args)
	case "reply":
		replyCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Client Simulator - Development tool for exercising the coach dashboard

USAGE:
  simulator <command> [options]

COMMANDS:
  populate  Register fake mothers, upgrade some to premium and have them write to the coach
  reply     Log in as the coach and answer every client with unread messages
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # 5 clients, 3 of them premium, each premium sends 2 messages and logs a day
  simulator populate --count=5 --premium=3 --messages=2 --bitacora

  # Answer everyone as the coach
  simulator reply --email=coach@mamarespira.com --password=secret`)
}

var sampleMessages = []string{
	"Hola, anoche se despertó cuatro veces, ¿es normal?",
	"La siesta de la tarde duró solo 30 minutos.",
	"Hoy probamos la rutina de baño antes de dormir.",
	"Gracias por los consejos, esta noche fue mejor.",
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	count := fs.Int("count", 5, "Number of fake clients to register")
	premium := fs.Int("premium", 3, "How many of them upgrade to premium")
	messages := fs.Int("messages", 2, "Messages each premium client sends to the coach")
	bitacora := fs.Bool("bitacora", false, "Also log today's bitácora for each premium client")
	fs.Parse(args)

	if *count < 1 || *premium < 0 || *premium > *count {
		fmt.Println("Error: need --count >= 1 and 0 <= --premium <= --count")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Client Simulator: Populate ===")
	fmt.Println()

	coachID := ""
	if *premium > 0 && *messages > 0 {
		fmt.Print("Looking up the coach... ")
		id, err := client.CoachID()
		if err != nil {
			fmt.Printf("FAILED\n  Error: %v\n  Register the coach account first.\n", err)
			os.Exit(1)
		}
		coachID = id
		fmt.Printf("OK (%s)\n", coachID)
	}

	for i := 0; i < *count; i++ {
		name := fmt.Sprintf("Mamá Simulada %d", i+1)
		user, token, err := client.RegisterUser(name, "", "testpassword123")
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to register: %v\n", i+1, *count, err)
			os.Exit(1)
		}

		if i >= *premium {
			fmt.Printf("  [%d/%d] %s registered (user)\n", i+1, *count, user.Email)
			continue
		}

		if err := client.UpgradePremium(token); err != nil {
			fmt.Printf("  [%d/%d] FAILED to upgrade %s: %v\n", i+1, *count, user.Email, err)
			os.Exit(1)
		}

		for m := 0; m < *messages; m++ {
			content := sampleMessages[(i+m)%len(sampleMessages)]
			if _, err := client.SendMessage(token, coachID, content); err != nil {
				fmt.Printf("  [%d/%d] FAILED to send message: %v\n", i+1, *count, err)
				os.Exit(1)
			}
		}

		if *bitacora {
			b, err := client.CreateBitacora(token, map[string]any{
				"morning_wake_time": "07:00",
				"baby_mood":         "tranquilo",
				"number_of_wakings": i % 4,
				"naps": []map[string]any{
					{"laid_down_time": "10:00", "duration_minutes": 40 + 5*i},
				},
			})
			if err != nil {
				fmt.Printf("  [%d/%d] FAILED to log bitácora: %v\n", i+1, *count, err)
				os.Exit(1)
			}
			fmt.Printf("          bitácora day %d: %s\n", b.DayNumber, deref(b.AISummary))
		}

		fmt.Printf("  [%d/%d] %s registered (premium, %d messages)\n", i+1, *count, user.Email, *messages)
	}

	fmt.Println()
	fmt.Println("Done. Open the coach dashboard to see the new conversations.")
}

func replyCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("reply", flag.ExitOnError)
	email := fs.String("email", "", "Coach email")
	password := fs.String("password", "", "Coach password")
	text := fs.String("text", "¡Gracias por escribir! Lo revisamos en la próxima sesión.", "Reply text")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Println("Error: --email and --password are required")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	coach, token, err := client.Login(*email, *password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		os.Exit(1)
	}
	if coach.Role != "coach" {
		fmt.Printf("%s is not the coach (role %s)\n", coach.Email, coach.Role)
		os.Exit(1)
	}

	convs, err := client.Clients(token)
	if err != nil {
		fmt.Printf("Failed to list clients: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	replied := 0
	for _, conv := range convs {
		if conv.UnreadCount == 0 {
			continue
		}
		msgs, err := client.Conversation(token, conv.UserID)
		if err != nil {
			fmt.Printf("  %s: FAILED to read: %v\n", conv.UserName, err)
			continue
		}
		if _, err := client.SendMessage(token, conv.UserID, *text); err != nil {
			fmt.Printf("  %s: FAILED to reply: %v\n", conv.UserName, err)
			continue
		}
		replied++
		fmt.Printf("  %s: read %d message(s), replied\n", conv.UserName, len(msgs))
	}

	fmt.Printf("\nReplied to %d of %d clients in %s\n", replied, len(convs), time.Since(start).Round(time.Millisecond))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
