package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/auth"
	"github.com/Rodevv972/Le-gros-cerveau-de-la-squad/network"
)

// send formats and sends a framed message to the quiz server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	var data []byte
	if v != nil {
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return err
		}
	}

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	secret := flag.String("secret", "dev-secret", "shared auth secret")
	username := flag.String("user", "quizctl", "username to connect as")
	role := flag.String("role", "admin", "role claim (admin or player)")
	flag.Parse()

	signer := auth.NewHMACAuthenticator(*secret)
	token, err := signer.SignToken(auth.UserInfo{
		UserID:   *username,
		Username: *username,
		Role:     *role,
	})
	if err != nil {
		log.Fatalf("Token signing failed: %v", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	log.Printf("Connecting to %s", u.Host)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Commands: create <name> <category> | join <gameId> | start <gameId> | answer <gameId> <questionId> <option> | leave")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create":
				req := map[string]interface{}{"name": "quizctl game", "category": "mixed", "questionCount": 5}
				if len(fields) > 1 {
					req["name"] = fields[1]
				}
				if len(fields) > 2 {
					req["category"] = fields[2]
				}
				err = send(c, network.MsgTypeCreateGame, req)
			case "join":
				if len(fields) < 2 {
					continue
				}
				err = send(c, network.MsgTypeJoinGame, map[string]string{"gameId": fields[1]})
			case "start":
				if len(fields) < 2 {
					continue
				}
				err = send(c, network.MsgTypeStartGame, map[string]string{"gameId": fields[1]})
			case "answer":
				if len(fields) < 4 {
					continue
				}
				option, _ := strconv.Atoi(fields[3])
				err = send(c, network.MsgTypeSubmitAnswer, map[string]interface{}{
					"gameId":         fields[1],
					"questionId":     fields[2],
					"selectedOption": option,
					"responseTime":   1000,
				})
			case "leave":
				err = send(c, network.MsgTypeLeaveGame, nil)
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}

			if err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", fields[0])
		}
	}
}
