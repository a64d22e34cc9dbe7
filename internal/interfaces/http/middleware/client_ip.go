package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies сети обратных прокси, которым разрешено сообщать адрес клиента
// через X-Forwarded-For и X-Real-IP. Пустой список означает, что заголовки игнорируются
type TrustedProxies []netip.Prefix

// ParseTrustedProxies разбирает список адресов и CIDR: "10.0.0.0/8", "127.0.0.1"
func ParseTrustedProxies(values []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return proxies, nil
}

func (p TrustedProxies) contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP возвращает адрес клиента. Если запрос пришел не от доверенного прокси,
// это RemoteAddr. Иначе X-Forwarded-For читается справа налево до первого
// адреса, который не принадлежит доверенным прокси
func (p TrustedProxies) ClientIP(r *http.Request) string {
	remote := remoteHost(r)

	remoteAddr, err := netip.ParseAddr(remote)
	if err != nil || !p.contains(remoteAddr) {
		return remote
	}

	if forwarded := r.Header.Values("X-Forwarded-For"); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")
		client := ""
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = addr.Unmap().String()
			if !p.contains(addr) {
				return client
			}
		}
		if client != "" {
			return client
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}

	return remote
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
