package discovery

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeNetworkTXT creates TXT records for a hosted network.
func EncodeNetworkTXT(info *NetworkInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeySSID] = info.SSID
	txt[TXTKeyAuth] = info.Auth
	if info.Auth == "" {
		txt[TXTKeyAuth] = AuthWPA2PSK
	}
	txt[TXTKeyPeers] = strconv.Itoa(info.Peers)

	// Optional fields
	if info.State != "" {
		txt[TXTKeyState] = info.State
	}
	if info.Host != "" {
		txt[TXTKeyHost] = info.Host
	}

	return txt
}

// DecodeNetworkTXT parses TXT records of a hosted network.
func DecodeNetworkTXT(txt TXTRecordMap) (*NetworkInfo, error) {
	info := &NetworkInfo{}

	var ok bool
	info.SSID, ok = txt[TXTKeySSID]
	if !ok || info.SSID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeySSID)
	}

	info.Auth, ok = txt[TXTKeyAuth]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyAuth)
	}
	if info.Auth != AuthWPA2PSK && info.Auth != AuthOpen {
		return nil, fmt.Errorf("%w: unknown auth %q", ErrInvalidTXTRecord, info.Auth)
	}

	if peers, ok := txt[TXTKeyPeers]; ok {
		n, err := strconv.Atoi(peers)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid peer count %q", ErrInvalidTXTRecord, peers)
		}
		info.Peers = n
	}

	// Optional fields
	info.State = txt[TXTKeyState]
	info.Host = txt[TXTKeyHost]

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to "key=value" strings,
// sorted by key.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	slices.Sort(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// InstanceName returns the instance name to announce info under.
func InstanceName(info *NetworkInfo) (string, error) {
	name := info.InstanceName
	if name == "" {
		name = info.SSID
	}
	if err := ValidateInstanceName(name); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: instance name", ErrMissingRequired)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
