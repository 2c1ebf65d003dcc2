package mqtt

import (
	"fmt"
	"strings"
)

// maxTopicLength is the MQTT limit on an encoded topic string.
const maxTopicLength = 65535

// ValidatePublishTopic checks a topic name used for publishing.
// Wildcards are not allowed in topic names.
func ValidatePublishTopic(topic string) error {
	if err := validateCommon(topic); err != nil {
		return err
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcards not allowed in publish topic %q", ErrInvalidTopic, topic)
	}
	return nil
}

// ValidateFilter checks a subscription topic filter.
//
// "+" must occupy a whole level and "#" must occupy the whole final level:
//
//	sensors/+/temp   ok
//	sensors/#        ok
//	sensors/t+       rejected
//	sensors/#/temp   rejected
func ValidateFilter(filter string) error {
	if err := validateCommon(filter); err != nil {
		return err
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		if strings.Contains(level, "#") && (level != "#" || i != len(levels)-1) {
			return fmt.Errorf("%w: misplaced '#' in filter %q", ErrInvalidTopic, filter)
		}
		if strings.Contains(level, "+") && level != "+" {
			return fmt.Errorf("%w: misplaced '+' in filter %q", ErrInvalidTopic, filter)
		}
	}
	return nil
}

func validateCommon(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	}
	if len(topic) > maxTopicLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidTopic, maxTopicLength)
	}
	if strings.ContainsRune(topic, 0) {
		return fmt.Errorf("%w: contains NUL", ErrInvalidTopic)
	}
	return nil
}
