package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/wfunc/dungeonfloor/network"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "dungeon server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	conn, err := network.Dial(u.String())
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			packet, err := conn.ReadPacket()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			printPacket(packet)
		}
	}()

	if err := conn.Send(network.MsgTypeSubscribe, nil); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Subscribed. Commands: north, south, east, west, clear, look.")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			return
		case text, ok := <-lines:
			if !ok {
				return
			}
			if err := command(conn, text); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}

func command(conn *network.WSConnection, text string) error {
	switch text {
	case "":
		return nil
	case "north", "south", "east", "west":
		data, err := network.Encode(network.WalkRequest{Direction: text})
		if err != nil {
			return err
		}
		return conn.Send(network.MsgTypeWalk, data)
	case "clear":
		return conn.Send(network.MsgTypeClearRoom, nil)
	case "look":
		return conn.Send(network.MsgTypeSnapshot, nil)
	}
	log.Printf("Unknown command %q", text)
	return nil
}

// snapshot mirrors the fields of services.Snapshot the client prints.
type snapshot struct {
	Floor     int    `json:"floor"`
	Room      string `json:"room"`
	Role      string `json:"role"`
	State     string `json:"state"`
	Occupants int    `json:"occupants"`
	KeyFound  bool   `json:"key_found"`
	Dump      string `json:"dump"`
}

func printPacket(p *network.Packet) {
	switch p.MsgID {
	case network.MsgTypeSnapshot, network.MsgTypeRoomChange, network.MsgTypeFloorChange:
		var s snapshot
		if err := json.Unmarshal(p.Data, &s); err != nil {
			log.Printf("Bad snapshot: %v", err)
			return
		}
		fmt.Printf("floor %d room %s (%s, %s) occupants=%d key=%v\n%s",
			s.Floor, s.Room, s.Role, s.State, s.Occupants, s.KeyFound, s.Dump)
	case network.MsgTypeError:
		log.Printf("<- ERROR: %s", p.Data)
	default:
		log.Printf("<- RECV (ID: %d): %s", p.MsgID, p.Data)
	}
}
