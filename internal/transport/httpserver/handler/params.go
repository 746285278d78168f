package handler

import (
	"fmt"
	"strconv"
	"strings"

	shoppingdomain "pentrypal-go/internal/domain/shopping"
)

func parseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("invalid int")
	}
	return parsed, nil
}

func parseStatusParam(value string) (string, error) {
	switch strings.TrimSpace(value) {
	case "":
		return "", nil
	case shoppingdomain.StatusActive:
		return shoppingdomain.StatusActive, nil
	case shoppingdomain.StatusCompleted:
		return shoppingdomain.StatusCompleted, nil
	case shoppingdomain.StatusArchived:
		return shoppingdomain.StatusArchived, nil
	default:
		return "", fmt.Errorf("invalid status")
	}
}
