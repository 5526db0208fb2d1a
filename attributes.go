// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package emailparser

// Attribute keys of evidence nodes.
const (
	AttrName         = "name"
	AttrHeaders      = "headers"
	AttrFrom         = "from"
	AttrTo           = "to"
	AttrCc           = "cc"
	AttrSubject      = "subject"
	AttrSentTime     = "sent_time"
	AttrReceivedTime = "received_time"
	AttrBodyPlain    = "body_plain"
	AttrBodyHTML     = "body_html"
	AttrBodyRTF      = "body_rtf"
	AttrMessageID    = "message_id"
	AttrPath         = "path"
	AttrURL          = "url"
	AttrOrganization = "organization"

	AttrEmail       = "email"
	AttrEmailHome   = "email_home"
	AttrEmailOffice = "email_office"
	AttrEmailX400   = "email_x400"

	AttrPhone               = "phone_number"
	AttrPhoneHome           = "phone_number_home"
	AttrPhoneOffice         = "phone_number_office"
	AttrPhoneText           = "phone_number_text"
	AttrPhoneFax            = "phone_number_fax"
	AttrPhoneMobile         = "phone_number_mobile"
	AttrPhoneVideo          = "phone_number_video"
	AttrPhonePager          = "phone_number_pager"
	AttrPhoneTextphone      = "phone_number_textphone"
	AttrPhoneVoiceMessaging = "phone_number_voice_messaging"
	AttrPhoneBBS            = "phone_number_bbs"
	AttrPhoneModem          = "phone_number_modem"
	AttrPhoneCar            = "phone_number_car"
	AttrPhoneISDN           = "phone_number_isdn"
	AttrPhonePCS            = "phone_number_pcs"
)

// Attributes is the typed attribute set of one evidence node. Values
// are strings or epoch seconds. The set is assembled completely before
// it is handed to the evidence store, partially built sets are never
// persisted.
type Attributes map[string]interface{}

// AddString stores value under key. Empty values are dropped, repeated
// keys collect their values into a list.
func (a Attributes) AddString(key, value string) {
	if value == "" {
		return
	}
	a.add(key, value)
}

// AddTime stores an epoch second timestamp under key. Zero and negative
// timestamps are dropped.
func (a Attributes) AddTime(key string, seconds int64) {
	if seconds <= 0 {
		return
	}
	a.add(key, seconds)
}

func (a Attributes) add(key string, value interface{}) {
	switch existing := a[key].(type) {
	case nil:
		a[key] = value
	case []interface{}:
		a[key] = append(existing, value)
	default:
		a[key] = []interface{}{existing, value}
	}
}
