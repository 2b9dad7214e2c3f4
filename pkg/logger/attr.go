package logger

import (
	"log/slog"
	"strconv"
)

// maxSQLLength caps how much statement text goes into a single record.
const maxSQLLength = 2048

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups non-nil errors under "errors". Returns an empty Attr when all are nil.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under "error". Returns an empty Attr for nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// TenantID records the tenant identifier under "tenant_id".
func TenantID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("tenant_id", id)
}

// Subdomain records a tenant subdomain or resolution candidate.
func Subdomain(subdomain string) slog.Attr {
	return slog.String("subdomain", subdomain)
}

// Schema records the database schema a statement or connection is bound to.
func Schema(name string) slog.Attr {
	return slog.String("schema", name)
}

// SQL records statement text, truncated.
func SQL(sql string) slog.Attr {
	if len(sql) > maxSQLLength {
		sql = sql[:maxSQLLength] + "..."
	}
	return slog.String("sql", sql)
}

// Reason records why a request or statement was rejected.
func Reason(reason string) slog.Attr {
	return slog.String("reason", reason)
}

// UserID records the user identifier under "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Role records a role name.
func Role(role any) slog.Attr {
	if role == nil {
		return slog.Attr{}
	}
	return slog.Any("role", role)
}

// RequestID records the request identifier under "request_id".
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Route records the route descriptor name.
func Route(name string) slog.Attr {
	return slog.String("route", name)
}

// Duration records a duration.
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// ClientIP records the resolved client address.
func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}
