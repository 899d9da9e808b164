package types

// Host -> Server (POST /surfaces/{surface}/messages, or one text frame on
// /surfaces/{surface}/host)
//   { "action": string, ...fields of that action }
//   e.g. { "action": "showKillfeed", "killerName": "Bob [12]", "victimName": "Al [3]", "isHeadshot": true }
//        { "action": "showReviveProgress", "duration": 10 }
//   Unknown actions are accepted and ignored.
//
// Server -> Host (POST HOST_CALLBACK_URL with {surface} and {action} filled)
//   body: JSON object, {} when the action carries nothing
//   e.g. joinQueue { "mode": "2v2" }, kickPlayer { "targetId": 7 },
//        zoneSelected { "zone": 3 }, playerInteract:copyId { "serverId": "12" }
//   Replies are only read for getQueueStats, getGroupInfo,
//   getPlayerStatsByMode and getLeaderboardByMode.

// Client -> Server (GET /ws?surface=...)
// Mount:
//   ids: string[]                          // elements present on the page
//   seeds: { id, class?, text? }[]         // same, with their initial state
//
// Intent:
//   action: string                         // e.g. "search", "selectMode", "kick"
//   payload: object                        // e.g. { "mode": "2v2" }, { "targetId": 4 }
