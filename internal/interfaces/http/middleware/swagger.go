package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/globoesim/gateway/internal/interfaces/http/dto"
)

// SwaggerAllowlist restricts the documentation endpoint to the given IPs
// and CIDR ranges. An empty list allows every client; entries that parse as
// neither are ignored.
func SwaggerAllowlist(allowed []string) gin.HandlerFunc {
	var (
		allowedIPs  []net.IP
		allowedNets []*net.IPNet
	)
	for _, entry := range allowed {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				allowedNets = append(allowedNets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			allowedIPs = append(allowedIPs, ip)
		}
	}

	return func(c *gin.Context) {
		if len(allowed) > 0 && !isIPAllowed(net.ParseIP(c.ClientIP()), allowedIPs, allowedNets) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"Access to API documentation is restricted",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowedIP := range allowedIPs {
		if allowedIP.Equal(ip) {
			return true
		}
	}
	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
