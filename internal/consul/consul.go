package consul

import (
	"fmt"
	"os"

	consulapi "github.com/hashicorp/consul/api"
)

// NewClient connects to the agent at CONSUL_HTTP_ADDR (the api package
// default when unset).
func NewClient() (*consulapi.Client, error) {
	client, err := consulapi.NewClient(consulapi.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("creating consul client: %w", err)
	}
	return client, nil
}

// RegisterService registers this process with consul using the /ping
// endpoint as the HTTP health check. Returns the registration id so the
// caller can deregister on shutdown.
func RegisterService(client *consulapi.Client, serviceName string, port int) (string, error) {
	address := os.Getenv("SERVICE_ADDRESS")
	if address == "" {
		address = "localhost"
	}

	registrationId := fmt.Sprintf("%s-%s-%d", serviceName, address, port)
	registration := &consulapi.AgentServiceRegistration{
		ID:      registrationId,
		Name:    serviceName,
		Address: address,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/ping", address, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return "", fmt.Errorf("registering service %s: %w", serviceName, err)
	}
	return registrationId, nil
}

// DeregisterService removes the registration created by RegisterService.
func DeregisterService(client *consulapi.Client, registrationId string) error {
	if err := client.Agent().ServiceDeregister(registrationId); err != nil {
		return fmt.Errorf("deregistering service %s: %w", registrationId, err)
	}
	return nil
}
