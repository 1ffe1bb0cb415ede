package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"fieldsync/internal/dto"

	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "sync":
		err = runSync(args)
	case "zones":
		err = runZones(args)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  sync    Post a sync batch (generated, or from a JSON file)")
	fmt.Fprintln(os.Stderr, "  zones   List zones for client caching")
	os.Exit(2)
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	baseURL := fs.String("base-url", "http://localhost:8085", "service base URL")
	deviceID := fs.String("device", "", "device id (generated when empty)")
	file := fs.String("file", "", "JSON file with a full sync request body")
	eventType := fs.String("type", "CLEANING_CHECK", "event type for the generated event")
	zoneID := fs.Int64("zone", 0, "zone id for the generated event")
	userID := fs.Int64("user", 0, "user id for the generated event")
	lat := fs.Float64("lat", 0, "latitude for the generated event")
	lng := fs.Float64("lng", 0, "longitude for the generated event")
	skew := fs.Duration("skew", 0, "artificial clock skew applied to device_time_at_send")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var body []byte
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			return err
		}
		body = raw
	} else {
		dev := *deviceID
		if dev == "" {
			dev = "synctl-" + uuid.NewString()
		}
		req := dto.SyncRequest{
			DeviceID:         dev,
			DeviceTimeAtSend: time.Now().UTC().Add(*skew),
			Events: []dto.SyncEvent{{
				ClientEventID: uuid.NewString(),
				Type:          *eventType,
				EventTime:     time.Now().UTC(),
			}},
		}
		if *zoneID != 0 {
			req.Events[0].Payload.ZoneID = zoneID
		}
		if *userID != 0 {
			req.Events[0].Payload.UserID = userID
		}
		if *lat != 0 || *lng != 0 {
			req.Events[0].Payload.GPS = &dto.GPSReading{Lat: lat, Lng: lng}
		}
		raw, err := json.Marshal(req)
		if err != nil {
			return err
		}
		body = raw
	}

	resp, err := http.Post(*baseURL+"/sync/events", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return dump(resp)
}

func runZones(args []string) error {
	fs := flag.NewFlagSet("zones", flag.ExitOnError)
	baseURL := fs.String("base-url", "http://localhost:8085", "service base URL")
	siteID := fs.String("site", "", "filter by site id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	url := *baseURL + "/v1/zones"
	if *siteID != "" {
		url += "?site_id=" + *siteID
	}
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return dump(resp)
}

func dump(resp *http.Response) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n", resp.Status, raw)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with %s", resp.Status)
	}
	return nil
}
