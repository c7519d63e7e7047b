package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type messageData struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Room      string `json:"room"`
}

type historyData struct {
	Room     string        `json:"room"`
	Messages []messageData `json:"messages"`
}

type presenceData struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type errorData struct {
	Message string `json:"message"`
}

var joinCmd = &cobra.Command{
	Use:   "join <room>",
	Short: "Join a chat room and talk interactively",
	Long: `Connects to the gateway, joins the given room, prints recent history
and live traffic, and sends every typed line as a message. Type 'exit' to
leave.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		room := args[0]

		conn, _, err := websocket.DefaultDialer.Dial(serverAddress, nil)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", serverAddress, err)
		}
		defer conn.Close()

		join := outboundFrame{
			Event: "join_room",
			Data:  map[string]string{"room": room, "username": displayName},
		}
		if err := conn.WriteJSON(join); err != nil {
			return fmt.Errorf("failed to join %s: %w", room, err)
		}

		go printEvents(conn)

		reader := bufio.NewReader(os.Stdin)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return nil
			}
			send := outboundFrame{
				Event: "send_message",
				Data:  map[string]string{"message": line},
			}
			if err := conn.WriteJSON(send); err != nil {
				return fmt.Errorf("connection lost: %w", err)
			}
		}
	},
}

func printEvents(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			fmt.Fprintln(os.Stderr, "disconnected:", err)
			os.Exit(1)
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		switch frame.Event {
		case "message_history":
			var data historyData
			if err := json.Unmarshal(frame.Data, &data); err == nil {
				for _, m := range data.Messages {
					fmt.Printf("%s: %s\n", m.Username, m.Message)
				}
			}
		case "receive_message":
			var data messageData
			if err := json.Unmarshal(frame.Data, &data); err == nil {
				fmt.Printf("%s: %s\n", data.Username, data.Message)
			}
		case "user_joined", "user_left":
			var data presenceData
			if err := json.Unmarshal(frame.Data, &data); err == nil {
				fmt.Printf("* %s\n", data.Message)
			}
		case "error":
			var data errorData
			if err := json.Unmarshal(frame.Data, &data); err == nil {
				fmt.Fprintln(os.Stderr, "error:", data.Message)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
