package rpc

import (
	"fmt"
	"image"
	"net/rpc"
	"time"
)

type Client struct {
	client *rpc.Client
}

// NewClient connects to the server at addr, retrying a few times while the
// emulator starts up.
func NewClient(addr string) (*Client, error) {
	const maxretries = 5

	var err error
	for i := range maxretries {
		var client *rpc.Client
		if client, err = rpc.DialHTTP("tcp", addr); err == nil {
			return &Client{client: client}, nil
		}
		modRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	return nil, fmt.Errorf("dial failed after %d retries: %w", maxretries, err)
}

func (c *Client) Close() error {
	modRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) Reset() error              { return call(c.client, "emu.Reset", nil) }
func (c *Client) Restart() error            { return call(c.client, "emu.Restart", nil) }
func (c *Client) SetPause(pause bool) error { return call(c.client, "emu.SetPause", pause) }
func (c *Client) Stop() error               { return call(c.client, "emu.Stop", nil) }

func (c *Client) Status() (Status, error) {
	return request[Status](c.client, "emu.Status", nil)
}

func (c *Client) Screenshot() (*image.RGBA, error) {
	img, err := request[image.RGBA](c.client, "emu.Screenshot", nil)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func call(client *rpc.Client, funcname string, args any) error {
	_, err := request[struct{}](client, funcname, args)
	return err
}

func request[T any](client *rpc.Client, funcname string, args any) (T, error) {
	if args == nil {
		args = &struct{}{}
	}
	var reply T
	if err := client.Call(funcname, args, &reply); err != nil {
		return reply, fmt.Errorf("rpc %s: %w", funcname, err)
	}
	return reply, nil
}
